package split

import "go.splitkit.dev/core/keys"

// minima tracks the smallest key observed within each partition. A
// zero-length key is a legal row key, so presence is tracked apart from
// the key value.
type minima struct {
	min   []keys.Key
	found []bool
}

func newMinima(regions int) *minima {
	return &minima{
		min:   make([]keys.Key, regions),
		found: make([]bool, regions),
	}
}

// fold the key into partition p. The key is cloned if retained, so
// callers may pass keys aliasing a read buffer.
func (m *minima) fold(p int, k keys.Key) {
	if !m.found[p] || k.Less(m.min[p]) {
		m.min[p], m.found[p] = k.Clone(), true
	}
}

// merge folds each of other's partition minima into m. Unlike fold,
// merged keys are adopted without copying: other is consumed.
func (m *minima) merge(other *minima) {
	for p, ok := range other.found {
		if !ok {
			continue
		}
		if !m.found[p] {
			m.min[p], m.found[p] = other.min[p], true
		} else {
			m.min[p] = keys.Min(m.min[p], other.min[p])
		}
	}
}

// splits returns the minima of partitions 1 and above in partition
// order, skipping partitions which received no keys. Partition 0's
// minimum is the global minimum of the key set, and is not an interior
// boundary. The result is non-decreasing, because partition order
// coincides with key order.
func (m *minima) splits() []keys.Key {
	var out = make([]keys.Key, 0, len(m.min)-1)
	for p := 1; p != len(m.min); p++ {
		if m.found[p] {
			out = append(out, m.min[p])
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
