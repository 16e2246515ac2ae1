// Command osmscene converts a file of raw geographic features into scene
// and chunk artifacts for a given bounding box.
//
// The input file holds the fetch result as JSON: a map from category
// ("roads", "railways", "waterways", "transit") to raw features.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mapforge/osmscene/pkg/pipeline"
	"github.com/mapforge/osmscene/pkg/scene"
)

func main() {
	var (
		bboxFlag  = flag.String("bbox", "", "bounding box as south,west,north,east in degrees (required)")
		inputFlag = flag.String("input", "", "path to raw features JSON file (required)")
		outFlag   = flag.String("out", ".", "output directory for artifacts")
		areaFlag  = flag.String("area", "", "display name recorded in scene metadata")
		prefix    = flag.String("prefix", "scene", "artifact filename prefix")
		geojson   = flag.Bool("geojson", false, "also write a geodetic GeoJSON preview")
		chunkSize = flag.Float64("chunk-size", pipeline.DefaultChunkSize, "partition cell size in metres")
		clipSpan  = flag.Float64("clip-span", pipeline.DefaultClipSpan, "maximum unclipped scene span in metres")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *bboxFlag == "" || *inputFlag == "" {
		flag.Usage()
		os.Exit(2)
	}
	bbox, err := parseBBox(*bboxFlag)
	if err != nil {
		log.Error("invalid -bbox", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.DefaultOptions()
	opts.BBox = bbox
	opts.Area = *areaFlag
	opts.Features = fileSource{path: *inputFlag}
	opts.ChunkSize = *chunkSize
	opts.ClipSpan = *clipSpan
	opts.OutputDir = *outFlag
	opts.OutputPrefix = *prefix
	opts.GeoJSON = *geojson
	opts.Logger = log

	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		var noFeatures *scene.ErrNoFeatures
		if errors.As(err, &noFeatures) {
			log.Error("area produced no entities, check the bounding box", "err", err)
		} else {
			log.Error("conversion failed", "err", err)
		}
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s (%d entities, %d chunks, %d validation events)\n",
		res.ScenePath, res.ChunksPath, res.Scene.EntityCount(), len(res.Chunks), len(res.Events))
}

// parseBBox parses "south,west,north,east".
func parseBBox(s string) (scene.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return scene.BoundingBox{}, fmt.Errorf("want 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return scene.BoundingBox{}, fmt.Errorf("value %q: %w", p, err)
		}
		vals[i] = v
	}
	return scene.BoundingBox{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}, nil
}

// fileSource serves a pre-fetched feature set from a JSON file.
type fileSource struct {
	path string
}

func (f fileSource) Fetch(ctx context.Context, bbox scene.BoundingBox, categories []scene.Category) (map[scene.Category][]scene.RawFeature, error) {
	buf, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var all map[scene.Category][]scene.RawFeature
	if err := json.Unmarshal(buf, &all); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	out := make(map[scene.Category][]scene.RawFeature, len(categories))
	for _, c := range categories {
		if feats, ok := all[c]; ok {
			out[c] = feats
		}
	}
	return out, nil
}
