package projection

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/mapforge/osmscene/internal/parser"
	"github.com/mapforge/osmscene/pkg/scene"
)

// BuildScene projects a parsed geodetic network into planar scene entities.
// Every coordinate picks up its elevation from the sampler and is rounded
// to centimetre precision. Source ids become stable string ids with a
// category prefix; route stop references are rewritten to match.
func BuildScene(net *parser.Network, pr *Projector, sampler *Sampler) *scene.SceneData {
	data := &scene.SceneData{
		Roads:     make([]scene.RoadSegment, 0, len(net.Roads)),
		Railways:  make([]scene.RailSegment, 0, len(net.Rails)),
		Waterways: make([]scene.Waterway, 0, len(net.Waterways)),
		Transit: scene.TransitData{
			Stops:  make([]scene.TransitStop, 0, len(net.Stops)),
			Routes: make([]scene.TransitRoute, 0, len(net.Routes)),
		},
	}

	for _, r := range net.Roads {
		data.Roads = append(data.Roads, scene.RoadSegment{
			ID:         fmt.Sprintf("road_%d", r.ID),
			Type:       r.Class,
			Name:       r.Name,
			Points:     projectLine(pr, sampler, r.Points),
			Lanes:      r.Lanes,
			OneWay:     r.OneWay,
			SpeedLimit: r.SpeedLimit,
			Priority:   r.Priority,
		})
	}
	for _, r := range net.Rails {
		data.Railways = append(data.Railways, scene.RailSegment{
			ID:          fmt.Sprintf("rail_%d", r.ID),
			Type:        r.Class,
			Name:        r.Name,
			Points:      projectLine(pr, sampler, r.Points),
			Electrified: r.Electrified,
		})
	}
	for _, w := range net.Waterways {
		data.Waterways = append(data.Waterways, scene.Waterway{
			ID:     fmt.Sprintf("water_%d", w.ID),
			Type:   w.Class,
			Name:   w.Name,
			IsArea: w.IsArea,
			Points: projectLine(pr, sampler, w.Points),
			Width:  w.Width,
		})
	}
	for _, s := range net.Stops {
		data.Transit.Stops = append(data.Transit.Stops, scene.TransitStop{
			ID:       fmt.Sprintf("stop_%d", s.ID),
			Name:     s.Name,
			Type:     s.Mode,
			Position: projectPoint(pr, sampler, s.Position),
		})
	}
	for _, r := range net.Routes {
		refs := make([]string, len(r.StopRefs))
		for i, ref := range r.StopRefs {
			refs[i] = fmt.Sprintf("stop_%d", ref)
		}
		data.Transit.Routes = append(data.Transit.Routes, scene.TransitRoute{
			ID:       fmt.Sprintf("route_%d", r.ID),
			Name:     r.Name,
			Number:   r.Number,
			Type:     r.Class,
			Operator: r.Operator,
			Stops:    refs,
		})
	}
	return data
}

func projectPoint(pr *Projector, sampler *Sampler, pt orb.Point) scene.Point {
	return pr.Project(pt, sampler.At(pt)).Rounded()
}

func projectLine(pr *Projector, sampler *Sampler, pts []orb.Point) []scene.Point {
	out := make([]scene.Point, len(pts))
	for i, pt := range pts {
		out[i] = projectPoint(pr, sampler, pt)
	}
	return out
}
