package split

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.splitkit.dev/core/keys"
)

func TestReservoirBoundsItsSample(t *testing.T) {
	var r = newReservoir(100, 42)

	for i := 0; i != 10000; i++ {
		r.offer(keys.FromString(fmt.Sprintf("key-%05d", i)))
	}
	var sample, seen = r.take()

	assert.Len(t, sample, 100)
	assert.Equal(t, int64(10000), seen)

	// take resets the reservoir.
	sample, seen = r.take()
	assert.Empty(t, sample)
	assert.Zero(t, seen)
}

func TestReservoirBelowCapacityKeepsAll(t *testing.T) {
	var r = newReservoir(16, 42)

	r.offer(keys.FromString("b"))
	r.offer(keys.FromString("a"))

	var sample, seen = r.take()
	assert.Equal(t, keys.FromStrings("b", "a"), sample)
	assert.Equal(t, int64(2), seen)
}

func TestReservoirIsDeterministicForASeed(t *testing.T) {
	var sampleOf = func(seed int64) []keys.Key {
		var r = newReservoir(32, seed)
		for i := 0; i != 1000; i++ {
			r.offer(keys.FromString(fmt.Sprintf("%04d", i)))
		}
		var sample, _ = r.take()
		return sample
	}
	assert.Equal(t, sampleOf(7), sampleOf(7))
	assert.NotEqual(t, sampleOf(7), sampleOf(8))
}

func TestReservoirClonesOfferedKeys(t *testing.T) {
	var r = newReservoir(4, 1)
	var buf = []byte("mutable")

	r.offer(keys.Key(buf))
	buf[0] = 'X'

	var sample, _ = r.take()
	assert.Equal(t, "mutable", sample[0].String())
}

func TestReservoirConcurrentOffers(t *testing.T) {
	var r = newReservoir(50, 1)
	var wg sync.WaitGroup

	for w := 0; w != 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i != 1000; i++ {
				r.offer(keys.FromString(fmt.Sprintf("%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	var sample, seen = r.take()
	assert.Len(t, sample, 50)
	assert.Equal(t, int64(8000), seen)
}
