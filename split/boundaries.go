package split

import (
	"sort"

	"go.splitkit.dev/core/keys"
)

// boundaries are provisional range boundaries estimated from a sample
// of the key set. They're transient: built, consulted for partition
// assignment, and discarded within a single computation.
type boundaries struct {
	cuts []keys.Key
}

// boundariesFromSample sorts the sample and picks regions-1 evenly
// spaced values as cuts. The sample is taken over (sorted in place),
// and its Keys must not alias live read buffers.
func boundariesFromSample(sample []keys.Key, regions int) boundaries {
	sort.Slice(sample, func(i, j int) bool { return sample[i].Less(sample[j]) })

	if len(sample) == 0 {
		return boundaries{}
	}
	var cuts = make([]keys.Key, 0, regions-1)
	for r := 1; r != regions; r++ {
		cuts = append(cuts, sample[r*len(sample)/regions])
	}
	return boundaries{cuts: cuts}
}

// assign returns the partition of the key: the index of the first cut
// which orders strictly after it. Keys equal to a cut land in the
// partition which that cut begins, so a cut drawn from the key set is
// itself the minimum of its partition.
func (b boundaries) assign(k keys.Key) int {
	return sort.Search(len(b.cuts), func(i int) bool { return k.Less(b.cuts[i]) })
}
