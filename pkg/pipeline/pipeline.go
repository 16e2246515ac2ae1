// Package pipeline orchestrates the conversion of raw geographic features
// into a chunked planar scene description: parse, project, sample
// elevations, clip oversized extents, partition into chunks, and serialize.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mapforge/osmscene/internal/chunk"
	"github.com/mapforge/osmscene/internal/clip"
	"github.com/mapforge/osmscene/internal/parser"
	"github.com/mapforge/osmscene/internal/projection"
	"github.com/mapforge/osmscene/internal/validation"
	"github.com/mapforge/osmscene/pkg/scene"
)

// FeatureSource supplies raw features for a bounding box, one slice per
// requested category. Implementations own their retry policy; an error
// returned here is treated as an exhausted upstream.
type FeatureSource interface {
	Fetch(ctx context.Context, bbox scene.BoundingBox, categories []scene.Category) (map[scene.Category][]scene.RawFeature, error)
}

// Result is the outcome of a successful run.
type Result struct {
	// Scene is the full converted scene, clipped when the area exceeded
	// the maximum span.
	Scene *scene.SceneData

	// Chunks is the grid-partitioned scene in (col, row) order.
	Chunks []scene.Chunk

	// Events lists the non-fatal validation events of the run.
	Events []scene.ValidationEvent

	// Artifact paths, empty when Options.OutputDir was unset.
	ScenePath   string
	ChunksPath  string
	GeoJSONPath string
}

// Run executes the pipeline. It returns a fatal error without writing any
// artifact when the bounding box is invalid, the fetch fails, the area
// yields zero entities, or an artifact cannot be written. Per-feature
// problems never fail the run; they are returned as Result.Events.
func Run(ctx context.Context, o Options) (*Result, error) {
	opts := o.withDefaults()
	log := opts.Logger

	if err := opts.BBox.Validate(); err != nil {
		return nil, err
	}
	if opts.Features == nil {
		return nil, fmt.Errorf("feature source is required")
	}

	raw, err := opts.Features.Fetch(ctx, opts.BBox, opts.Categories)
	if err != nil {
		return nil, &scene.ErrUpstream{Op: "fetch", Err: err}
	}

	rec := validation.NewRecorder(log)
	net := parser.New(rec).Parse(raw)
	if net.EntityCount() == 0 {
		return nil, &scene.ErrNoFeatures{BBox: opts.BBox}
	}
	log.Info("parsed features",
		"roads", len(net.Roads),
		"railways", len(net.Rails),
		"waterways", len(net.Waterways),
		"stops", len(net.Stops),
		"routes", len(net.Routes),
	)

	proj := projection.New(opts.BBox)
	sampler := projection.NewSampler(opts.Elevation, opts.ElevationBatchSize, opts.ElevationConcurrency, rec)
	if err := sampler.SampleAll(ctx, net.Coordinates()); err != nil {
		return nil, &scene.ErrUpstream{Op: "elevation", Err: err}
	}
	log.Info("sampled elevations", "points", sampler.Resolved())

	data := projection.BuildScene(net, proj, sampler)
	originLat, originLon := proj.Origin()
	data.Meta = &scene.Meta{
		Area:            opts.Area,
		BBox:            opts.BBox,
		OriginLat:       originLat,
		OriginLon:       originLon,
		ExtentWidth:     proj.ExtentWidth(),
		ExtentHeight:    proj.ExtentHeight(),
		ElevationPoints: sampler.Resolved(),
	}

	extent := proj.Extent()
	clipper := clip.New(opts.ClipSpan, rec)
	if clipper.Needed(proj.ExtentWidth(), proj.ExtentHeight()) {
		log.Info("clipping oversized extent",
			"width", proj.ExtentWidth(),
			"height", proj.ExtentHeight(),
			"span", opts.ClipSpan,
		)
		data = clipper.Apply(data)
		extent = clipper.Bound()
		if data.EntityCount() == 0 {
			return nil, &scene.ErrNoFeatures{BBox: opts.BBox}
		}
	}

	chunks := chunk.Partition(data, extent, opts.ChunkSize)
	log.Info("partitioned scene", "entities", data.EntityCount(), "chunks", len(chunks))

	res := &Result{
		Scene:  data,
		Chunks: chunks,
		Events: rec.Events(),
	}
	if opts.OutputDir != "" {
		if err := writeArtifacts(res, proj, opts); err != nil {
			return nil, err
		}
		log.Info("wrote artifacts", "scene", res.ScenePath, "chunks", res.ChunksPath)
	}
	return res, nil
}

func writeArtifacts(res *Result, proj *projection.Projector, opts Options) error {
	res.ScenePath = filepath.Join(opts.OutputDir, opts.OutputPrefix+".json")
	if err := scene.WriteScene(res.ScenePath, res.Scene); err != nil {
		return fmt.Errorf("write scene artifact: %w", err)
	}

	res.ChunksPath = filepath.Join(opts.OutputDir, opts.OutputPrefix+"_chunks.json")
	if err := scene.WriteChunks(res.ChunksPath, res.Chunks); err != nil {
		return fmt.Errorf("write chunk artifact: %w", err)
	}

	if opts.GeoJSON {
		res.GeoJSONPath = filepath.Join(opts.OutputDir, opts.OutputPrefix+".geojson")
		if err := scene.WriteGeoJSON(res.GeoJSONPath, res.Scene, proj.Unproject); err != nil {
			return fmt.Errorf("write geojson preview: %w", err)
		}
	}
	return nil
}
