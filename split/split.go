// Package split computes region split keys of a key set: the ordered
// boundary keys which divide the key space into approximately
// equal-cardinality, contiguous ranges.
//
// The computation runs as one bounded batch job over the sources of a
// keyset.KeySet, in two passes of fixed memory per worker:
//
//   - A sampling pass streams every source through a shared bounded
//     reservoir, and provisional range boundaries are picked at evenly
//     spaced values of the sorted sample.
//   - A partitioning pass routes each key to the partition found by
//     binary search of those boundaries, folding a running minimum per
//     partition within each worker. A final gather merges the worker
//     minima, and the minima of partitions 1 and above are the split
//     keys.
//
// Merging per-worker minima is equivalent to shuffling all keys and
// sorting within each partition, but moves only regions-many keys per
// worker instead of the whole key set.
//
// Degenerate inputs are accepted rather than rejected: a key set with
// fewer keys than regions produces fewer split keys (empty partitions
// contribute no boundary), and an all-equal key set produces repeated,
// identical split keys.
package split

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go.splitkit.dev/core/keys"
	"go.splitkit.dev/core/keyset"
	"go.splitkit.dev/core/metrics"
)

// Config configures a split computation.
type Config struct {
	Regions     int `long:"regions" env:"REGIONS" description:"Number of regions the table is pre-split into"`
	SampleCap   int `long:"sample-cap" env:"SAMPLE_CAP" default:"0" description:"Maximum number of keys sampled while estimating range boundaries. If 0, a bounded default proportional to --regions is used"`
	Parallelism int `long:"parallelism" env:"PARALLELISM" default:"0" description:"Maximum number of key sources read concurrently. If 0, all sources are read concurrently"`

	// Seed of the boundary sampler. If zero, a time-derived seed is used.
	// A fixed Seed reproduces the sampled balance. It reproduces the
	// exact sample only when concurrent sources never contend for
	// reservoir slots: a single source, or a SampleCap of at least the
	// key count. Test fixtures rely on that case.
	Seed int64
}

// Validate returns an error if the Config is malformed.
func (cfg Config) Validate() error {
	if cfg.Regions < 1 {
		return ErrInvalidRegions
	} else if cfg.SampleCap < 0 {
		return errors.Errorf("sample-cap cannot be negative (%d)", cfg.SampleCap)
	} else if cfg.Parallelism < 0 {
		return errors.Errorf("parallelism cannot be negative (%d)", cfg.Parallelism)
	}
	return nil
}

// ErrInvalidRegions is returned by Compute, before any source is read,
// if the requested region count is not a positive integer.
var ErrInvalidRegions = errors.New("regions must be a positive integer")

const (
	// samplesPerRegion scales the default boundary sample with the
	// requested region count.
	samplesPerRegion = 64
	// maxDefaultSample bounds the default boundary sample independent of
	// the region count.
	maxDefaultSample = 1 << 16
)

// Compute returns the ordered split keys of the KeySet: at most
// cfg.Regions-1 non-decreasing keys, such that splitting the key space
// at those keys yields regions of approximately equal cardinality.
//
// Compute fails fast with ErrInvalidRegions before reading any source.
// A failure of a source, or cancellation of ctx, aborts the whole
// computation: no partial result is returned, and no retry is attempted
// here.
func Compute(ctx context.Context, cfg Config, ks keyset.KeySet) ([]keys.Key, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Regions == 1 {
		return nil, nil // A single region has no interior boundary.
	}
	var (
		job   = uuid.New().String()
		start = time.Now()
	)

	var bounds, sampled, err = estimateBoundaries(ctx, cfg, ks)
	if err != nil {
		metrics.SplitComputeTotal.WithLabelValues(metrics.Fail).Inc()
		return nil, errors.WithMessage(err, "sampling key set")
	}
	log.WithFields(log.Fields{
		"job":     job,
		"sampled": sampled,
		"cuts":    len(bounds.cuts),
	}).Debug("estimated range boundaries")

	mins, routed, err := foldMinima(ctx, cfg, ks, bounds)
	if err != nil {
		metrics.SplitComputeTotal.WithLabelValues(metrics.Fail).Inc()
		return nil, errors.WithMessage(err, "partitioning key set")
	}
	var out = mins.splits()

	metrics.SplitComputeTotal.WithLabelValues(metrics.Ok).Inc()
	metrics.SplitComputeDurationTotal.Add(time.Since(start).Seconds())

	log.WithFields(log.Fields{
		"job":     job,
		"regions": cfg.Regions,
		"keys":    humanize.Comma(routed),
		"splits":  len(out),
		"took":    time.Since(start),
	}).Info("computed split keys")

	return out, nil
}

// estimateBoundaries drives the sampling pass: workers drain each
// source, offering keys to a shared bounded reservoir, and boundaries
// are picked from the merged sample.
func estimateBoundaries(ctx context.Context, cfg Config, ks keyset.KeySet) (boundaries, int64, error) {
	var capacity = cfg.SampleCap
	if capacity == 0 {
		capacity = cfg.Regions * samplesPerRegion
		if capacity > maxDefaultSample {
			capacity = maxDefaultSample
		}
	}
	var seed = cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var res = newReservoir(capacity, seed)

	var err = eachSource(ctx, cfg, ks, func(ctx context.Context, src keyset.Source) error {
		var n int64
		for {
			var k, err = src.Next()
			if err == io.EOF {
				break
			} else if err != nil {
				return err
			} else if err = ctx.Err(); err != nil {
				return err
			}
			res.offer(k)
			n++
		}
		metrics.SplitKeysSampledTotal.Add(float64(n))
		return nil
	})
	if err != nil {
		return boundaries{}, 0, err
	}
	var sample, seen = res.take()
	return boundariesFromSample(sample, cfg.Regions), seen, nil
}

// foldMinima drives the partitioning pass: workers route each source's
// keys to partitions and fold a local per-partition minimum, and a
// final gather merges worker minima once all complete.
func foldMinima(ctx context.Context, cfg Config, ks keyset.KeySet, bounds boundaries) (*minima, int64, error) {
	var (
		mu       sync.Mutex
		gathered = newMinima(cfg.Regions)
		routed   int64
	)
	var err = eachSource(ctx, cfg, ks, func(ctx context.Context, src keyset.Source) error {
		var local = newMinima(cfg.Regions)
		var n int64
		for {
			var k, err = src.Next()
			if err == io.EOF {
				break
			} else if err != nil {
				return err
			} else if err = ctx.Err(); err != nil {
				return err
			}
			local.fold(bounds.assign(k), k)
			n++
		}
		metrics.SplitKeysPartitionedTotal.Add(float64(n))
		atomic.AddInt64(&routed, n)

		mu.Lock()
		gathered.merge(local)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return gathered, atomic.LoadInt64(&routed), nil
}

// eachSource obtains fresh Sources of the KeySet and runs fn over each
// with bounded parallelism. Every Source is closed on all paths, and
// the first error cancels remaining workers.
func eachSource(ctx context.Context, cfg Config, ks keyset.KeySet, fn func(context.Context, keyset.Source) error) error {
	var srcs, err = ks.Sources()
	if err != nil {
		return err
	}
	var g, gCtx = errgroup.WithContext(ctx)
	if cfg.Parallelism != 0 {
		g.SetLimit(cfg.Parallelism)
	}
	for _, src := range srcs {
		var src = src
		g.Go(func() (err error) {
			defer func() {
				if cErr := src.Close(); err == nil {
					err = cErr
				}
			}()
			return fn(gCtx, src)
		})
	}
	return g.Wait()
}
