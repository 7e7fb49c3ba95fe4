// Package keys defines the canonical form of row keys: opaque byte
// sequences which order lexicographically. Every external key
// representation crosses into this form through the encoders of this
// package, exactly once at ingestion. No other package converts key
// representations.
package keys

import (
	"bytes"

	"github.com/jgraettinger/cockroach-encoding/encoding"
)

// Key is the unique, totally-ordered identifier of a row within a
// range-partitioned table. Keys compare lexicographically over raw bytes.
type Key []byte

// Compare returns -1, 0, or 1 as k orders before, equal to, or after other.
func (k Key) Compare(other Key) int { return bytes.Compare(k, other) }

// Less returns whether k orders strictly before other.
func (k Key) Less(other Key) bool { return bytes.Compare(k, other) < 0 }

// Equal returns whether k and other are byte-wise identical.
func (k Key) Equal(other Key) bool { return bytes.Equal(k, other) }

// Clone returns a copy of k backed by new storage. Sources are free to
// re-use read buffers, so any Key retained across reads must be cloned.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	var out = make(Key, len(k))
	copy(out, k)
	return out
}

func (k Key) String() string { return string(k) }

// FromString returns the canonical Key of a UTF-8 string row key.
// The mapping is the identity: Go strings compare byte-wise exactly as
// Keys do, so no re-encoding is required to preserve order.
func FromString(s string) Key { return Key(s) }

// FromStrings maps each string through FromString.
func FromStrings(ss ...string) []Key {
	var out = make([]Key, len(ss))
	for i, s := range ss {
		out[i] = FromString(s)
	}
	return out
}

// AppendString appends an order-preserving encoding of s to k.
// Use the Append* encoders to build composite row keys whose byte
// ordering matches the ordering of their components.
func AppendString(k Key, s string) Key {
	return Key(encoding.EncodeStringAscending([]byte(k), s))
}

// AppendBytes appends an order-preserving, escaped encoding of b to k.
func AppendBytes(k Key, b []byte) Key {
	return Key(encoding.EncodeBytesAscending([]byte(k), b))
}

// AppendInt appends an order-preserving varint encoding of i to k.
func AppendInt(k Key, i int64) Key {
	return Key(encoding.EncodeVarintAscending([]byte(k), i))
}

// AppendUint appends an order-preserving uvarint encoding of u to k.
func AppendUint(k Key, u uint64) Key {
	return Key(encoding.EncodeUvarintAscending([]byte(k), u))
}

// Min returns the lesser of a and b.
func Min(a, b Key) Key {
	if a.Compare(b) <= 0 {
		return a
	}
	return b
}
