package projection

import (
	"context"
	"errors"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/mapforge/osmscene/internal/validation"
	"github.com/mapforge/osmscene/pkg/scene"
)

// Sampler caches terrain elevations and resolves them in bounded-concurrency
// batches against an ElevationSource. Coordinates are deduplicated at
// 6-decimal precision (about 0.1 m), so shared way nodes are looked up once
// per run.
//
// A failed batch is recorded as a validation event and its points fall back
// to elevation 0; only context cancellation aborts sampling.
type Sampler struct {
	source      scene.ElevationSource
	cache       *gocache.Cache
	batchSize   int
	concurrency int
	rec         *validation.Recorder
}

// NewSampler returns a sampler over source. A nil source yields flat
// terrain: every lookup returns 0 and no requests are issued. Non-positive
// batchSize or concurrency fall back to 100 and 4.
func NewSampler(source scene.ElevationSource, batchSize, concurrency int, rec *validation.Recorder) *Sampler {
	if batchSize <= 0 {
		batchSize = 100
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Sampler{
		source:      source,
		cache:       gocache.New(gocache.NoExpiration, 0),
		batchSize:   batchSize,
		concurrency: concurrency,
		rec:         rec,
	}
}

// cacheKey rounds a coordinate to 6 decimal places. Two nodes closer than
// the rounding grid share one elevation lookup.
func cacheKey(pt orb.Point) string {
	return fmt.Sprintf("%.6f,%.6f", pt.Lat(), pt.Lon())
}

// SampleAll resolves elevations for coords, skipping coordinates already
// cached. It returns a non-nil error only when ctx is cancelled.
func (s *Sampler) SampleAll(ctx context.Context, coords []orb.Point) error {
	if s.source == nil || len(coords) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(coords))
	var pending []orb.Point
	for _, c := range coords {
		k := cacheKey(c)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, cached := s.cache.Get(k); cached {
			continue
		}
		pending = append(pending, c)
	}
	if len(pending) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for start := 0; start < len(pending); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		g.Go(func() error {
			elevs, err := s.source.Elevations(ctx, batch)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.rec.Record(validation.KindMissingElevation, 0,
					fmt.Sprintf("elevation batch of %d failed, defaulting to 0: %v", len(batch), err))
				return nil
			}
			if len(elevs) != len(batch) {
				s.rec.Record(validation.KindMissingElevation, 0,
					fmt.Sprintf("elevation batch returned %d values for %d points, defaulting to 0", len(elevs), len(batch)))
				return nil
			}
			for i, pt := range batch {
				s.cache.Set(cacheKey(pt), elevs[i], gocache.DefaultExpiration)
			}
			return nil
		})
	}
	return g.Wait()
}

// At returns the cached elevation for a coordinate, or 0 when the
// coordinate was never resolved.
func (s *Sampler) At(pt orb.Point) float64 {
	if v, ok := s.cache.Get(cacheKey(pt)); ok {
		return v.(float64)
	}
	return 0
}

// Resolved returns the number of distinct coordinates with a cached
// elevation.
func (s *Sampler) Resolved() int {
	return s.cache.ItemCount()
}
