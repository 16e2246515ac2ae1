package scene

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToGeoJSON converts a scene back to a geodetic GeoJSON FeatureCollection
// for inspection in standard GIS tooling. The unproject function inverts the
// scene's planar projection (planar x/y back to lon/lat); elevation is kept
// as a feature property, not a third coordinate.
//
// This is a preview/debugging artifact; the authoritative outputs are the
// full and chunked scene documents.
func ToGeoJSON(data *SceneData, unproject func(Point) orb.Point) (*geojson.FeatureCollection, error) {
	if unproject == nil {
		return nil, fmt.Errorf("unproject function is required")
	}

	fc := geojson.NewFeatureCollection()

	line := func(points []Point) orb.LineString {
		ls := make(orb.LineString, len(points))
		for i, p := range points {
			ls[i] = unproject(p)
		}
		return ls
	}

	for _, r := range data.Roads {
		f := geojson.NewFeature(line(r.Points))
		f.Properties = geojson.Properties{
			"id":       r.ID,
			"category": "road",
			"type":     r.Type,
			"name":     r.Name,
			"lanes":    r.Lanes,
			"oneWay":   r.OneWay,
		}
		fc.Append(f)
	}

	for _, r := range data.Railways {
		f := geojson.NewFeature(line(r.Points))
		f.Properties = geojson.Properties{
			"id":          r.ID,
			"category":    "railway",
			"type":        r.Type,
			"name":        r.Name,
			"electrified": r.Electrified,
		}
		fc.Append(f)
	}

	for _, w := range data.Waterways {
		var f *geojson.Feature
		if w.IsArea {
			ring := orb.Ring(line(w.Points))
			f = geojson.NewFeature(orb.Polygon{ring})
		} else {
			f = geojson.NewFeature(line(w.Points))
		}
		f.Properties = geojson.Properties{
			"id":       w.ID,
			"category": "waterway",
			"type":     w.Type,
			"name":     w.Name,
		}
		fc.Append(f)
	}

	for _, s := range data.Transit.Stops {
		f := geojson.NewFeature(unproject(s.Position))
		f.Properties = geojson.Properties{
			"id":        s.ID,
			"category":  "stop",
			"type":      s.Type,
			"name":      s.Name,
			"elevation": s.Position.Z,
		}
		fc.Append(f)
	}

	return fc, nil
}

// WriteGeoJSON writes the GeoJSON preview artifact to path.
func WriteGeoJSON(path string, data *SceneData, unproject func(Point) orb.Point) error {
	fc, err := ToGeoJSON(data, unproject)
	if err != nil {
		return err
	}
	buf, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return writeAtomic(path, buf)
}
