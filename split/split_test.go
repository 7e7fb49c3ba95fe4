package split

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.splitkit.dev/core/keys"
	"go.splitkit.dev/core/keyset"
)

func TestComputeEightKeysFourRegions(t *testing.T) {
	// The key set fits the sample, so boundary estimation is exact and
	// the computation is deterministic: cuts fall at "c", "e", and "g".
	var ks = keyset.FromShards(
		keys.FromStrings("h", "d", "a"),
		keys.FromStrings("c", "g", "b"),
		keys.FromStrings("f", "e"),
	)
	var splits, err = Compute(context.Background(),
		Config{Regions: 4, SampleCap: 16, Seed: 1}, ks)

	require.NoError(t, err)
	assert.Equal(t, keys.FromStrings("c", "e", "g"), splits)
	assertSplitInvariants(t, splits, 4)
}

func TestComputeSingleRegionSchedulesNoWork(t *testing.T) {
	var ks = &trackingKeySet{KeySet: keyset.FromKeys(keys.FromString("a"))}

	var splits, err = Compute(context.Background(), Config{Regions: 1}, ks)
	require.NoError(t, err)
	assert.Empty(t, splits)
	assert.Zero(t, ks.calls)
}

func TestComputeInvalidArgumentsFailFast(t *testing.T) {
	var ks = &trackingKeySet{KeySet: keyset.FromKeys(keys.FromString("a"))}

	for _, regions := range []int{0, -1} {
		var splits, err = Compute(context.Background(), Config{Regions: regions}, ks)
		assert.Equal(t, ErrInvalidRegions, err)
		assert.Nil(t, splits)
	}
	var _, err = Compute(context.Background(), Config{Regions: 2, SampleCap: -1}, ks)
	assert.EqualError(t, err, "sample-cap cannot be negative (-1)")

	_, err = Compute(context.Background(), Config{Regions: 2, Parallelism: -3}, ks)
	assert.EqualError(t, err, "parallelism cannot be negative (-3)")

	// No invalid argument touched the key set.
	assert.Zero(t, ks.calls)
}

func TestComputeDegenerateSingleKey(t *testing.T) {
	var splits, err = Compute(context.Background(),
		Config{Regions: 5, Seed: 1},
		keyset.FromKeys(keys.FromString("x")))

	require.NoError(t, err)
	assert.LessOrEqual(t, len(splits), 4)
	for _, k := range splits {
		assert.Equal(t, "x", k.String())
	}
	assertSplitInvariants(t, splits, 5)
}

func TestComputeFewerKeysThanRegions(t *testing.T) {
	var splits, err = Compute(context.Background(),
		Config{Regions: 4, SampleCap: 8, Seed: 1},
		keyset.FromKeys(keys.FromStrings("a", "b")...))

	require.NoError(t, err)
	assert.Equal(t, keys.FromStrings("a", "b"), splits)
	assertSplitInvariants(t, splits, 4)
}

func TestComputeAllEqualKeys(t *testing.T) {
	var fixture []keys.Key
	for i := 0; i != 10; i++ {
		fixture = append(fixture, keys.FromString("k"))
	}
	var splits, err = Compute(context.Background(),
		Config{Regions: 3, Seed: 1}, keyset.FromKeys(fixture...))

	require.NoError(t, err)
	assert.NotEmpty(t, splits)
	for _, k := range splits {
		assert.Equal(t, "k", k.String())
	}
	assertSplitInvariants(t, splits, 3)
}

func TestComputeEmptyKeySet(t *testing.T) {
	var splits, err = Compute(context.Background(),
		Config{Regions: 4, Seed: 1}, keyset.FromKeys())

	require.NoError(t, err)
	assert.Empty(t, splits)
}

func TestComputeIsBalancedAtScale(t *testing.T) {
	var n = 1 << 20
	if testing.Short() {
		n = 1 << 17
	}
	const regions, shards = 16, 8

	// Shuffled, zero-padded decimal keys spread uniformly over [0, n).
	var rnd = rand.New(rand.NewSource(7))
	var fixtures = make([][]keys.Key, shards)
	for i, v := range rnd.Perm(n) {
		fixtures[i%shards] = append(fixtures[i%shards],
			keys.FromString(fmt.Sprintf("%09d", v)))
	}
	var ks = keyset.FromShards(fixtures...)

	var splits, err = Compute(context.Background(),
		Config{Regions: regions, Parallelism: 4, Seed: 42}, ks)
	require.NoError(t, err)

	require.Len(t, splits, regions-1)
	assertSplitInvariants(t, splits, regions)

	// Splitting the key set at the returned boundaries yields ranges of
	// approximately equal cardinality.
	var counts = countRanges(splits, fixtures)
	var expect = n / regions
	for p, c := range counts {
		assert.Greater(t, c, expect/2, "partition %d", p)
		assert.Less(t, c, expect*2, "partition %d", p)
	}
}

func TestComputeBalanceIsIdempotentUnderResampling(t *testing.T) {
	const n, regions = 10000, 5

	var rnd = rand.New(rand.NewSource(11))
	var fixture = make([]keys.Key, n)
	for i := range fixture {
		fixture[i] = keys.FromString(fmt.Sprintf("%06d", rnd.Intn(1000000)))
	}
	var ks = keyset.FromKeys(fixture...)

	// Two runs with time-derived seeds sample differently, but must
	// produce equal-length, non-decreasing splits of comparable balance.
	for run := 0; run != 2; run++ {
		var splits, err = Compute(context.Background(), Config{Regions: regions}, ks)
		require.NoError(t, err)

		require.Len(t, splits, regions-1)
		assertSplitInvariants(t, splits, regions)

		for p, c := range countRanges(splits, [][]keys.Key{fixture}) {
			assert.Greater(t, c, n/regions/2, "run %d partition %d", run, p)
			assert.Less(t, c, n/regions*2, "run %d partition %d", run, p)
		}
	}
}

func TestComputeSourceFailurePropagates(t *testing.T) {
	var cause = errors.New("storage node lost")
	var ks = keyset.FromShards(keys.FromStrings("a", "b", "c"))

	var splits, err = Compute(context.Background(), Config{Regions: 3, Seed: 1},
		failingKeySet{KeySet: ks, err: cause})

	assert.Nil(t, splits)
	require.Error(t, err)
	assert.Equal(t, cause, errors.Cause(err))
	assert.Contains(t, err.Error(), "sampling key set")
}

func TestComputeCancellationAbortsAll(t *testing.T) {
	var ctx, cancel = context.WithCancel(context.Background())
	cancel()

	var fixture = make([]keys.Key, 100)
	for i := range fixture {
		fixture[i] = keys.FromString(fmt.Sprintf("%03d", i))
	}
	var splits, err = Compute(ctx, Config{Regions: 4, Seed: 1},
		keyset.FromKeys(fixture...))

	assert.Nil(t, splits)
	assert.Equal(t, context.Canceled, errors.Cause(err))
}

// assertSplitInvariants checks the output contract common to all
// computations: length bound and non-decreasing order.
func assertSplitInvariants(t *testing.T, splits []keys.Key, regions int) {
	assert.LessOrEqual(t, len(splits), regions-1)
	for i := 1; i < len(splits); i++ {
		assert.False(t, splits[i].Less(splits[i-1]),
			"splits out of order at %d: %q > %q", i, splits[i-1], splits[i])
	}
}

// countRanges counts the keys of each range induced by the splits.
func countRanges(splits []keys.Key, shards [][]keys.Key) []int {
	var counts = make([]int, len(splits)+1)
	for _, shard := range shards {
		for _, k := range shard {
			counts[sort.Search(len(splits), func(i int) bool { return k.Less(splits[i]) })]++
		}
	}
	return counts
}

type trackingKeySet struct {
	keyset.KeySet
	calls int
}

func (t *trackingKeySet) Sources() ([]keyset.Source, error) {
	t.calls++
	return t.KeySet.Sources()
}

// failingKeySet decorates each Source to fail after its first key.
type failingKeySet struct {
	keyset.KeySet
	err error
}

func (f failingKeySet) Sources() ([]keyset.Source, error) {
	var srcs, err = f.KeySet.Sources()
	if err != nil {
		return nil, err
	}
	for i, src := range srcs {
		srcs[i] = &failingSource{Source: src, err: f.err}
	}
	return srcs, nil
}

type failingSource struct {
	keyset.Source
	err   error
	reads int
}

func (f *failingSource) Next() (keys.Key, error) {
	if f.reads++; f.reads > 1 {
		return nil, f.err
	}
	return f.Source.Next()
}
