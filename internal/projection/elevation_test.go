package projection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/paulmach/orb"

	"github.com/mapforge/osmscene/internal/parser"
	"github.com/mapforge/osmscene/internal/validation"
)

// countingSource resolves every coordinate to a fixed elevation and counts
// how much work it was asked to do.
type countingSource struct {
	mu     sync.Mutex
	calls  int
	coords int
	elev   float64
	err    error
}

func (c *countingSource) Elevations(ctx context.Context, coords []orb.Point) ([]float64, error) {
	c.mu.Lock()
	c.calls++
	c.coords += len(coords)
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	out := make([]float64, len(coords))
	for i := range out {
		out[i] = c.elev
	}
	return out, nil
}

func TestSampleAllDeduplicates(t *testing.T) {
	src := &countingSource{elev: 42}
	s := NewSampler(src, 100, 4, validation.NewRecorder(nil))

	shared := orb.Point{7.4197, 43.7311}
	coords := []orb.Point{
		shared,
		{7.42, 43.732},
		shared, // repeated endpoint
		shared,
		{7.42000000004, 43.73200000004}, // within the 6-decimal rounding grid
	}
	if err := s.SampleAll(context.Background(), coords); err != nil {
		t.Fatalf("SampleAll: %v", err)
	}

	if src.coords != 2 {
		t.Errorf("source resolved %d coordinates, want 2 distinct", src.coords)
	}
	if got := s.At(shared); got != 42 {
		t.Errorf("At(shared) = %g, want 42", got)
	}

	// A second pass over the same coordinates hits only the cache.
	if err := s.SampleAll(context.Background(), coords); err != nil {
		t.Fatalf("SampleAll: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
}

func TestSampleAllBatches(t *testing.T) {
	src := &countingSource{}
	s := NewSampler(src, 10, 2, validation.NewRecorder(nil))

	coords := make([]orb.Point, 25)
	for i := range coords {
		coords[i] = orb.Point{7.4 + float64(i)*0.001, 43.7}
	}
	if err := s.SampleAll(context.Background(), coords); err != nil {
		t.Fatalf("SampleAll: %v", err)
	}

	if src.calls != 3 {
		t.Errorf("source calls = %d, want 3 batches of <= 10", src.calls)
	}
	if s.Resolved() != 25 {
		t.Errorf("resolved = %d, want 25", s.Resolved())
	}
}

func TestSampleAllFailureDefaultsToZero(t *testing.T) {
	rec := validation.NewRecorder(nil)
	src := &countingSource{err: errors.New("service unavailable")}
	s := NewSampler(src, 100, 4, rec)

	pt := orb.Point{7.4197, 43.7311}
	if err := s.SampleAll(context.Background(), []orb.Point{pt}); err != nil {
		t.Fatalf("batch failure must not fail sampling: %v", err)
	}
	if got := s.At(pt); got != 0 {
		t.Errorf("At() after failed batch = %g, want 0", got)
	}
	if rec.Count() != 1 {
		t.Errorf("events = %d, want 1", rec.Count())
	}
}

func TestSampleAllNilSource(t *testing.T) {
	s := NewSampler(nil, 100, 4, validation.NewRecorder(nil))
	if err := s.SampleAll(context.Background(), []orb.Point{{7.42, 43.73}}); err != nil {
		t.Fatalf("SampleAll: %v", err)
	}
	if got := s.At(orb.Point{7.42, 43.73}); got != 0 {
		t.Errorf("flat terrain elevation = %g, want 0", got)
	}
}

func TestBuildSceneIDsAndRounding(t *testing.T) {
	rec := validation.NewRecorder(nil)
	net := &parser.Network{
		Roads: []parser.Road{{
			ID: 42, Class: "LargeRoad", Lanes: 2, SpeedLimit: 50,
			Points: []orb.Point{{7.4197, 43.7311}, {7.4205, 43.7318}},
		}},
		Stops: []parser.Stop{{ID: 7, Mode: "bus", Position: orb.Point{7.4197, 43.7311}}},
		Routes: []parser.Route{{
			ID: 9, Class: "BusLine", StopRefs: []int64{7},
		}},
	}

	src := &countingSource{elev: 3.14159}
	sampler := NewSampler(src, 100, 4, rec)
	if err := sampler.SampleAll(context.Background(), net.Coordinates()); err != nil {
		t.Fatalf("SampleAll: %v", err)
	}

	data := BuildScene(net, New(monaco), sampler)

	if got := data.Roads[0].ID; got != "road_42" {
		t.Errorf("road id = %q, want road_42", got)
	}
	if got := data.Transit.Stops[0].ID; got != "stop_7" {
		t.Errorf("stop id = %q, want stop_7", got)
	}
	if got := data.Transit.Routes[0].Stops[0]; got != "stop_7" {
		t.Errorf("route stop ref = %q, want stop_7", got)
	}

	// Coordinates carry centimetre precision: rounding again is a no-op.
	for _, p := range data.Roads[0].Points {
		if p.Rounded() != p {
			t.Errorf("point %+v is not rounded to 0.01", p)
		}
	}
	if got := data.Roads[0].Points[0].Z; got != 3.14 {
		t.Errorf("z = %g, want 3.14", got)
	}
}
