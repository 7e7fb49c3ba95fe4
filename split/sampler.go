package split

import (
	"math/rand"
	"sync"

	"go.splitkit.dev/core/keys"
)

// reservoir maintains a fixed-capacity uniform sample over a stream of
// keys, independent of the stream's length. It's safe for concurrent
// offers from many workers.
type reservoir struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	capacity int
	seen     int64
	keys     []keys.Key
}

func newReservoir(capacity int, seed int64) *reservoir {
	return &reservoir{
		rnd:      rand.New(rand.NewSource(seed)),
		capacity: capacity,
	}
}

// offer folds the key into the sample. Once the reservoir is full, the
// key replaces a random resident with probability capacity/seen, which
// keeps the sample uniform over all keys offered so far. Retained keys
// are cloned.
func (r *reservoir) offer(k keys.Key) {
	r.mu.Lock()
	r.seen++
	if len(r.keys) != r.capacity {
		r.keys = append(r.keys, k.Clone())
	} else if j := r.rnd.Int63n(r.seen); j < int64(r.capacity) {
		r.keys[j] = k.Clone()
	}
	r.mu.Unlock()
}

// take returns the sampled keys and the total number offered,
// resetting the reservoir. The caller owns the returned slice.
func (r *reservoir) take() ([]keys.Key, int64) {
	r.mu.Lock()
	var sample, seen = r.keys, r.seen
	r.keys, r.seen = nil, 0
	r.mu.Unlock()
	return sample, seen
}
