package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/mapforge/osmscene/pkg/scene"
)

var monaco = scene.BoundingBox{South: 43.5165358, West: 7.4090279, North: 43.7519173, East: 7.5329917}

// memSource serves a fixed feature set.
type memSource struct {
	feats map[scene.Category][]scene.RawFeature
	err   error
}

func (m memSource) Fetch(ctx context.Context, bbox scene.BoundingBox, categories []scene.Category) (map[scene.Category][]scene.RawFeature, error) {
	return m.feats, m.err
}

// fixedElevation resolves every coordinate to the same elevation.
type fixedElevation float64

func (f fixedElevation) Elevations(ctx context.Context, coords []orb.Point) ([]float64, error) {
	out := make([]float64, len(coords))
	for i := range out {
		out[i] = float64(f)
	}
	return out, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func monacoFeatures() map[scene.Category][]scene.RawFeature {
	return map[scene.Category][]scene.RawFeature{
		scene.CategoryRoads: {
			{Kind: scene.KindWay, ID: 1,
				Tags:   map[string]string{"highway": "primary", "name": "Boulevard Albert 1er", "lanes": "2", "maxspeed": "50"},
				Points: []orb.Point{{7.4189, 43.7325}, {7.4230, 43.7351}}},
			{Kind: scene.KindWay, ID: 2,
				Tags:   map[string]string{"highway": "residential", "lanes": "1"},
				Points: []orb.Point{{7.4200, 43.7300}, {7.4210, 43.7310}}},
		},
		scene.CategoryRailways: {
			{Kind: scene.KindWay, ID: 3,
				Tags:   map[string]string{"railway": "rail", "electrified": "yes", "name": "Ligne Marseille-Vintimille"},
				Points: []orb.Point{{7.4100, 43.7280}, {7.4300, 43.7380}}},
		},
		scene.CategoryWaterways: {
			{Kind: scene.KindWay, ID: 4,
				Tags:   map[string]string{"natural": "coastline"},
				Points: []orb.Point{{7.4100, 43.7270}, {7.4350, 43.7360}}},
		},
		scene.CategoryTransit: {
			{Kind: scene.KindNode, ID: 10,
				Tags:   map[string]string{"highway": "bus_stop", "name": "Place d'Armes"},
				Points: []orb.Point{{7.4180, 43.7312}}},
			{Kind: scene.KindNode, ID: 11,
				Tags:   map[string]string{"highway": "bus_stop", "name": "Casino"},
				Points: []orb.Point{{7.4280, 43.7393}}},
			{Kind: scene.KindRelation, ID: 20,
				Tags: map[string]string{"type": "route", "route": "bus", "ref": "1"},
				Members: []scene.Member{
					{Kind: scene.KindNode, Ref: 10, Role: "stop"},
					{Kind: scene.KindNode, Ref: 11, Role: "stop"},
				}},
		},
	}
}

func TestRunMonaco(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultOptions()
	opts.BBox = monaco
	opts.Area = "Monaco"
	opts.Features = memSource{feats: monacoFeatures()}
	opts.Elevation = fixedElevation(35)
	opts.OutputDir = dir
	opts.Logger = quietLogger()

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := res.Scene.EntityCount(); got != 7 {
		t.Errorf("entities = %d, want 7", got)
	}
	if res.Scene.Meta == nil || res.Scene.Meta.Clipped {
		t.Errorf("meta = %+v, want unclipped", res.Scene.Meta)
	}

	// Monaco's extent fits a single default-size cell.
	if len(res.Chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(res.Chunks))
	}
	if res.Chunks[0].ChunkID != "chunk_0_0" {
		t.Errorf("chunk id = %q, want chunk_0_0", res.Chunks[0].ChunkID)
	}
	if got := res.Chunks[0].Data.EntityCount(); got != 7 {
		t.Errorf("chunk entities = %d, want all 7", got)
	}

	// All sampled points carry the fixed elevation.
	if z := res.Scene.Transit.Stops[0].Position.Z; z != 35 {
		t.Errorf("stop elevation = %g, want 35", z)
	}

	// Artifacts exist and decode back to the same entity counts.
	var decoded scene.SceneData
	buf, err := os.ReadFile(filepath.Join(dir, "scene.json"))
	if err != nil {
		t.Fatalf("read scene artifact: %v", err)
	}
	if err := json.Unmarshal(buf, &decoded); err != nil {
		t.Fatalf("decode scene artifact: %v", err)
	}
	if decoded.EntityCount() != res.Scene.EntityCount() {
		t.Errorf("artifact entities = %d, want %d", decoded.EntityCount(), res.Scene.EntityCount())
	}

	var chunks []scene.Chunk
	buf, err = os.ReadFile(filepath.Join(dir, "scene_chunks.json"))
	if err != nil {
		t.Fatalf("read chunk artifact: %v", err)
	}
	if err := json.Unmarshal(buf, &chunks); err != nil {
		t.Fatalf("decode chunk artifact: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("artifact chunks = %d, want 1", len(chunks))
	}
}

func TestRunMinimalScene(t *testing.T) {
	feats := map[scene.Category][]scene.RawFeature{
		scene.CategoryRoads: {
			{Kind: scene.KindWay, ID: 1,
				Tags:   map[string]string{"highway": "secondary", "lanes": "2"},
				Points: []orb.Point{{7.4189, 43.7325}, {7.4210, 43.7340}, {7.4230, 43.7351}}},
		},
		scene.CategoryRailways: {
			{Kind: scene.KindWay, ID: 2,
				Tags:   map[string]string{"railway": "tram"},
				Points: []orb.Point{{7.4100, 43.7280}, {7.4300, 43.7380}}},
		},
	}

	opts := DefaultOptions()
	opts.BBox = monaco
	opts.Features = memSource{feats: feats}
	opts.Logger = quietLogger()

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Scene.Roads) != 1 || res.Scene.Roads[0].Type != "MediumRoad" {
		t.Errorf("roads = %+v, want one MediumRoad", res.Scene.Roads)
	}
	if len(res.Scene.Railways) != 1 || res.Scene.Railways[0].Type != "Tram" {
		t.Errorf("railways = %+v, want one Tram", res.Scene.Railways)
	}
	if n := len(res.Scene.Transit.Stops) + len(res.Scene.Transit.Routes); n != 0 {
		t.Errorf("transit entities = %d, want 0", n)
	}
	if len(res.Chunks) != 1 {
		t.Fatalf("chunks = %d, want 1 at default cell size", len(res.Chunks))
	}
	// The single chunk covers the whole projected extent.
	b := res.Chunks[0].Bounds
	if b.Width < res.Scene.Meta.ExtentWidth || b.Height < res.Scene.Meta.ExtentHeight {
		t.Errorf("chunk bounds %+v smaller than extent %gx%g",
			b, res.Scene.Meta.ExtentWidth, res.Scene.Meta.ExtentHeight)
	}
}

func TestRunClipsOversizedArea(t *testing.T) {
	// A full degree of latitude (~111 km) exceeds the maximum span.
	big := scene.BoundingBox{South: 43.0, West: 7.0, North: 44.0, East: 7.2}

	feats := map[scene.Category][]scene.RawFeature{
		scene.CategoryRoads: {
			// Crosses the whole extent south to north.
			{Kind: scene.KindWay, ID: 1,
				Tags:   map[string]string{"highway": "motorway", "lanes": "4", "maxspeed": "130"},
				Points: []orb.Point{{7.1, 43.01}, {7.1, 43.5}, {7.1, 43.99}}},
			// Entirely in the far north, outside the clipped square.
			{Kind: scene.KindWay, ID: 2,
				Tags:   map[string]string{"highway": "residential", "lanes": "1"},
				Points: []orb.Point{{7.1, 43.97}, {7.11, 43.98}}},
		},
	}

	opts := DefaultOptions()
	opts.BBox = big
	opts.Features = memSource{feats: feats}
	opts.Logger = quietLogger()

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Scene.Meta == nil || !res.Scene.Meta.Clipped {
		t.Error("oversized area not flagged as clipped")
	}
	if len(res.Scene.Roads) != 1 {
		t.Fatalf("roads = %d, want 1 (outside road dropped)", len(res.Scene.Roads))
	}
	half := DefaultClipSpan / 2
	for _, p := range res.Scene.Roads[0].Points {
		if p.X < -half || p.X > half || p.Y < -half || p.Y > half {
			t.Errorf("point %+v extends past the clipped extent", p)
		}
	}
	// The clipped square is exactly 2x2 default cells.
	if len(res.Chunks) != 4 {
		t.Errorf("chunks = %d, want 4", len(res.Chunks))
	}

	dropped := false
	for _, ev := range res.Events {
		if ev.Kind == "degenerate_geometry" {
			dropped = true
		}
	}
	if !dropped {
		t.Error("dropped road recorded no validation event")
	}
}

func TestRunErrors(t *testing.T) {
	base := func() Options {
		opts := DefaultOptions()
		opts.BBox = monaco
		opts.Features = memSource{feats: monacoFeatures()}
		opts.Logger = quietLogger()
		return opts
	}

	t.Run("invalid bounding box", func(t *testing.T) {
		opts := base()
		opts.BBox = scene.BoundingBox{South: 44, West: 7.4, North: 43.5, East: 7.53}
		_, err := Run(context.Background(), opts)
		var invalid *scene.ErrInvalidBoundingBox
		if !errors.As(err, &invalid) {
			t.Errorf("err = %v, want *ErrInvalidBoundingBox", err)
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		opts := base()
		opts.Features = memSource{err: errors.New("gateway timeout")}
		_, err := Run(context.Background(), opts)
		var upstream *scene.ErrUpstream
		if !errors.As(err, &upstream) {
			t.Fatalf("err = %v, want *ErrUpstream", err)
		}
		if upstream.Op != "fetch" {
			t.Errorf("op = %q, want fetch", upstream.Op)
		}
	})

	t.Run("no features", func(t *testing.T) {
		opts := base()
		opts.Features = memSource{feats: map[scene.Category][]scene.RawFeature{}}
		_, err := Run(context.Background(), opts)
		var none *scene.ErrNoFeatures
		if !errors.As(err, &none) {
			t.Errorf("err = %v, want *ErrNoFeatures", err)
		}
	})

	t.Run("no artifact on failure", func(t *testing.T) {
		dir := t.TempDir()
		opts := base()
		opts.Features = memSource{feats: map[scene.Category][]scene.RawFeature{}}
		opts.OutputDir = dir
		if _, err := Run(context.Background(), opts); err == nil {
			t.Fatal("want error")
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("failed run left %d files in output dir", len(entries))
		}
	})
}
