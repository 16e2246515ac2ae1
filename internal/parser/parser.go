// Package parser turns raw tagged geographic elements into typed scene
// entities. Classification uses closed tag vocabularies; malformed or
// unrecognized features are rejected with a validation event and the run
// continues.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/mapforge/osmscene/internal/validation"
	"github.com/mapforge/osmscene/pkg/scene"
)

// Defaults applied when an attribute is absent or unparseable. Both cases
// record a validation event.
const (
	defaultLanes      = 2
	defaultSpeedLimit = 50 // km/h
)

const mphToKmh = 1.60934

// Parser converts raw features into a Network. Parsing is deterministic:
// the same input always yields an identical network.
type Parser struct {
	rec *validation.Recorder
}

// New returns a parser recording validation events to rec.
func New(rec *validation.Recorder) *Parser {
	return &Parser{rec: rec}
}

// Parse consumes one fetch result (features grouped by category) and
// produces the typed network. Rejected features are skipped, never fatal.
func (p *Parser) Parse(input map[scene.Category][]scene.RawFeature) *Network {
	net := &Network{}

	for i := range input[scene.CategoryRoads] {
		if road, ok := p.parseRoad(&input[scene.CategoryRoads][i]); ok {
			net.Roads = append(net.Roads, road)
		}
	}
	for i := range input[scene.CategoryRailways] {
		if rail, ok := p.parseRail(&input[scene.CategoryRailways][i]); ok {
			net.Rails = append(net.Rails, rail)
		}
	}
	for i := range input[scene.CategoryWaterways] {
		if ww, ok := p.parseWaterway(&input[scene.CategoryWaterways][i]); ok {
			net.Waterways = append(net.Waterways, ww)
		}
	}

	net.Stops, net.Routes = p.parseTransit(input[scene.CategoryTransit])

	return net
}

func (p *Parser) parseRoad(f *scene.RawFeature) (Road, bool) {
	class, priority, ok := RoadClass(f.Tag("highway"))
	if !ok {
		p.rec.Record(validation.KindUnknownClass, f.ID,
			fmt.Sprintf("unrecognized highway value %q", f.Tag("highway")))
		return Road{}, false
	}

	points, ok := p.wayPoints(f)
	if !ok {
		return Road{}, false
	}

	return Road{
		ID:         f.ID,
		Class:      class,
		Priority:   priority,
		Name:       f.Tag("name"),
		Lanes:      p.parseLanes(f),
		OneWay:     parseOneWay(f.Tag("oneway")),
		SpeedLimit: p.parseSpeed(f),
		Points:     points,
	}, true
}

func (p *Parser) parseRail(f *scene.RawFeature) (Rail, bool) {
	class, ok := RailClass(f.Tag("railway"))
	if !ok {
		p.rec.Record(validation.KindUnknownClass, f.ID,
			fmt.Sprintf("unrecognized railway value %q", f.Tag("railway")))
		return Rail{}, false
	}

	points, ok := p.wayPoints(f)
	if !ok {
		return Rail{}, false
	}

	return Rail{
		ID:          f.ID,
		Class:       class,
		Name:        f.Tag("name"),
		Electrified: f.Tag("electrified") == "yes",
		Points:      points,
	}, true
}

func (p *Parser) parseWaterway(f *scene.RawFeature) (Waterway, bool) {
	class, isArea, ok := WaterwayClass(f.Tags)
	if !ok {
		p.rec.Record(validation.KindUnknownClass, f.ID, "unrecognized water feature tags")
		return Waterway{}, false
	}

	points, ok := p.wayPoints(f)
	if !ok {
		return Waterway{}, false
	}

	if isArea && !closedRing(points) {
		// Unclosed ways tagged as areas exist in the wild; they cannot form
		// a valid polygon.
		p.rec.Record(validation.KindDegenerate, f.ID, "area waterway is not a closed ring")
		return Waterway{}, false
	}

	return Waterway{
		ID:     f.ID,
		Class:  class,
		Name:   f.Tag("name"),
		IsArea: isArea,
		Width:  parseWidth(f.Tags),
		Points: points,
	}, true
}

// parseTransit extracts stops from node features and routes from route
// relations, then resolves every route's stop references against the parsed
// stop set. Dangling references are dropped with a validation event.
func (p *Parser) parseTransit(features []scene.RawFeature) ([]Stop, []Route) {
	var stops []Stop
	var routes []Route

	stopIDs := make(map[int64]struct{})

	for i := range features {
		f := &features[i]
		if f.Kind != scene.KindNode {
			continue
		}
		mode, ok := StopMode(f.Tags)
		if !ok {
			p.rec.Record(validation.KindUnknownClass, f.ID, "node is not a recognized transit stop")
			continue
		}
		if len(f.Points) == 0 {
			p.rec.Record(validation.KindMissingPoints, f.ID, "stop node has no position")
			continue
		}
		stops = append(stops, Stop{
			ID:       f.ID,
			Name:     f.Tag("name"),
			Mode:     mode,
			Position: f.Points[0],
		})
		stopIDs[f.ID] = struct{}{}
	}

	for i := range features {
		f := &features[i]
		if f.Kind != scene.KindRelation || f.Tag("type") != "route" {
			continue
		}
		class, ok := RouteType(f.Tag("route"))
		if !ok {
			p.rec.Record(validation.KindUnknownClass, f.ID,
				fmt.Sprintf("unrecognized route value %q", f.Tag("route")))
			continue
		}

		// Only node members with the stop role contribute to the stop
		// sequence, in relation order. Way members prove the route exists
		// but contribute no geometry.
		var refs []int64
		for _, m := range f.Members {
			if m.Kind != scene.KindNode || m.Role != "stop" {
				continue
			}
			if _, exists := stopIDs[m.Ref]; !exists {
				p.rec.Record(validation.KindDanglingStopRef, f.ID,
					fmt.Sprintf("route references unknown stop %d", m.Ref))
				continue
			}
			refs = append(refs, m.Ref)
		}

		routes = append(routes, Route{
			ID:       f.ID,
			Name:     f.Tag("name"),
			Number:   f.Tag("ref"),
			Class:    class,
			Operator: f.Tag("operator"),
			StopRefs: refs,
		})
	}

	return stops, routes
}

// wayPoints validates and copies a way's coordinate sequence. A way with
// fewer than 2 points, or with a coordinate outside geographic bounds, is
// rejected.
func (p *Parser) wayPoints(f *scene.RawFeature) ([]orb.Point, bool) {
	if len(f.Points) < 2 {
		p.rec.Record(validation.KindMissingPoints, f.ID,
			fmt.Sprintf("way has %d point(s), need at least 2", len(f.Points)))
		return nil, false
	}
	for _, pt := range f.Points {
		if pt.Lat() < -90 || pt.Lat() > 90 || pt.Lon() < -180 || pt.Lon() > 180 {
			p.rec.Record(validation.KindDegenerate, f.ID,
				fmt.Sprintf("coordinate out of range: lon=%g lat=%g", pt.Lon(), pt.Lat()))
			return nil, false
		}
	}
	points := make([]orb.Point, len(f.Points))
	copy(points, f.Points)
	return points, true
}

// closedRing reports whether points form a closed ring usable as a polygon:
// at least 4 points with first == last.
func closedRing(points []orb.Point) bool {
	return len(points) >= 4 && points[0] == points[len(points)-1]
}

func (p *Parser) parseLanes(f *scene.RawFeature) int {
	raw, present := f.Tags["lanes"]
	if !present {
		p.rec.Record(validation.KindBadAttribute, f.ID, "lanes tag absent, defaulting to 2")
		return defaultLanes
	}
	lanes, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || lanes < 1 {
		p.rec.Record(validation.KindBadAttribute, f.ID,
			fmt.Sprintf("unparseable lanes value %q, defaulting to 2", raw))
		return defaultLanes
	}
	return lanes
}

// parseSpeed parses a maxspeed tag. Values like "30 mph" are converted to
// km/h; bare numbers are taken as km/h.
func (p *Parser) parseSpeed(f *scene.RawFeature) int {
	raw, present := f.Tags["maxspeed"]
	if !present {
		return defaultSpeedLimit
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return defaultSpeedLimit
	}
	speed, err := strconv.Atoi(fields[0])
	if err != nil {
		p.rec.Record(validation.KindBadAttribute, f.ID,
			fmt.Sprintf("unparseable maxspeed value %q, defaulting to %d", raw, defaultSpeedLimit))
		return defaultSpeedLimit
	}
	if strings.Contains(strings.ToLower(raw), "mph") {
		speed = int(float64(speed) * mphToKmh)
	}
	return speed
}

// parseWidth parses a width in metres from the width tag, falling back to
// est_width. Handles values like "12 m" or "12.5". Returns nil when absent
// or unparseable; width is optional.
func parseWidth(tags map[string]string) *float64 {
	raw := tags["width"]
	if raw == "" {
		raw = tags["est_width"]
	}
	if raw == "" {
		return nil
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	w, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	return &w
}

func parseOneWay(value string) bool {
	switch value {
	case "yes", "true", "1":
		return true
	}
	return false
}
