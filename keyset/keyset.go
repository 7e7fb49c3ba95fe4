// Package keyset models a collection of row keys distributed across a
// number of independently consumable Sources, each streaming one slice
// of the full collection. The collection is never materialized in one
// place: computations drain Sources in parallel with bounded memory.
package keyset

import (
	"io"

	"go.splitkit.dev/core/keys"
)

// Source is a stream over one slice of a KeySet.
type Source interface {
	// Next returns the next key of the Source, or io.EOF at end of input.
	// The returned Key may reference an internal read buffer which is
	// invalidated by the following Next. Callers retaining a Key across
	// calls must Clone it.
	Next() (keys.Key, error)
	// Close releases the Source. Close must be called exactly once,
	// whether or not the Source was fully drained.
	Close() error
}

// KeySet is a read-only, possibly very large collection of row keys.
type KeySet interface {
	// Sources returns fresh Sources which collectively stream the entire
	// collection from its start. Each call returns new Sources, so a
	// computation may make multiple passes over the KeySet.
	Sources() ([]Source, error)
}

// FromKeys returns an in-memory KeySet of ks, presented as one Source.
func FromKeys(ks ...keys.Key) KeySet { return sliceKeySet{ks} }

// FromShards returns an in-memory KeySet with one Source per shard.
func FromShards(shards ...[]keys.Key) KeySet {
	var s = make(sliceShards, len(shards))
	copy(s, shards)
	return s
}

type sliceKeySet struct{ keys []keys.Key }

func (s sliceKeySet) Sources() ([]Source, error) {
	return []Source{&sliceSource{keys: s.keys}}, nil
}

type sliceShards [][]keys.Key

func (s sliceShards) Sources() ([]Source, error) {
	var out = make([]Source, len(s))
	for i, shard := range s {
		out[i] = &sliceSource{keys: shard}
	}
	return out, nil
}

type sliceSource struct {
	keys []keys.Key
	next int
}

func (s *sliceSource) Next() (keys.Key, error) {
	if s.next == len(s.keys) {
		return nil, io.EOF
	}
	s.next++
	return s.keys[s.next-1], nil
}

func (s *sliceSource) Close() error { return nil }
