package pipeline

import (
	"log/slog"

	"github.com/mapforge/osmscene/pkg/scene"
)

// Default stage parameters. The clip span is the largest supported
// unclipped scene extent; the chunk cell size is half of it.
const (
	DefaultClipSpan             = 57344.0
	DefaultChunkSize            = 28672.0
	DefaultElevationBatchSize   = 100
	DefaultElevationConcurrency = 4
)

// Options configures one pipeline run.
type Options struct {
	// BBox is the requested geographic area. Required.
	BBox scene.BoundingBox

	// Area is a display name recorded in the scene metadata.
	Area string

	// Categories selects which feature categories to fetch and convert.
	// Empty means all categories.
	Categories []scene.Category

	// Features supplies raw geographic features for the area. Required.
	Features FeatureSource

	// Elevation supplies terrain elevations. Nil yields flat terrain
	// (every point at elevation 0) without issuing any requests.
	Elevation scene.ElevationSource

	// ClipSpan is the maximum scene extent in metres. Areas whose larger
	// planar dimension exceeds it are clipped to a centred square of this
	// span. Non-positive selects DefaultClipSpan.
	ClipSpan float64

	// ChunkSize is the partition grid cell edge length in metres.
	// Non-positive selects DefaultChunkSize.
	ChunkSize float64

	// ElevationBatchSize caps coordinates per elevation request.
	ElevationBatchSize int

	// ElevationConcurrency caps in-flight elevation requests.
	ElevationConcurrency int

	// OutputDir, when set, receives the scene and chunk artifacts.
	OutputDir string

	// OutputPrefix names the artifacts: <prefix>.json, <prefix>_chunks.json
	// and, with GeoJSON set, <prefix>.geojson. Defaults to "scene".
	OutputPrefix string

	// GeoJSON additionally writes a geodetic preview of the scene.
	GeoJSON bool

	// Logger receives structured progress and validation output.
	// Nil selects slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns options with every tunable at its default.
// BBox and Features must still be set by the caller.
func DefaultOptions() Options {
	return Options{
		Categories: []scene.Category{
			scene.CategoryRoads,
			scene.CategoryRailways,
			scene.CategoryWaterways,
			scene.CategoryTransit,
		},
		ClipSpan:             DefaultClipSpan,
		ChunkSize:            DefaultChunkSize,
		ElevationBatchSize:   DefaultElevationBatchSize,
		ElevationConcurrency: DefaultElevationConcurrency,
		OutputPrefix:         "scene",
	}
}

func (o *Options) withDefaults() Options {
	opts := *o
	if len(opts.Categories) == 0 {
		opts.Categories = DefaultOptions().Categories
	}
	if opts.ClipSpan <= 0 {
		opts.ClipSpan = DefaultClipSpan
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ElevationBatchSize <= 0 {
		opts.ElevationBatchSize = DefaultElevationBatchSize
	}
	if opts.ElevationConcurrency <= 0 {
		opts.ElevationConcurrency = DefaultElevationConcurrency
	}
	if opts.OutputPrefix == "" {
		opts.OutputPrefix = "scene"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}
