package parser

import "github.com/paulmach/orb"

// Geodetic entities: typed, classified features still in (lon, lat) degrees.
// The projector turns these into scene entities with planar coordinates.
// Entities are created once per run and never mutated afterward.

// Road is a classified drivable way.
type Road struct {
	ID         int64
	Class      string
	Priority   int
	Name       string
	Lanes      int
	OneWay     bool
	SpeedLimit int
	Points     []orb.Point
}

// Rail is a classified rail-bound way.
type Rail struct {
	ID          int64
	Class       string
	Name        string
	Electrified bool
	Points      []orb.Point
}

// Waterway is a linear water feature or, when IsArea is set, a closed ring.
type Waterway struct {
	ID     int64
	Class  string
	Name   string
	IsArea bool
	Width  *float64
	Points []orb.Point
}

// Stop is a transit halt with a single position.
type Stop struct {
	ID       int64
	Name     string
	Mode     string
	Position orb.Point
}

// Route is an ordered transit service over stop references. StopRefs holds
// source ids of stops present in the same network; dangling references are
// dropped during parsing.
type Route struct {
	ID       int64
	Name     string
	Number   string
	Class    string
	Operator string
	StopRefs []int64
}

// Network is the full set of typed entities parsed from one fetch result.
type Network struct {
	Roads     []Road
	Rails     []Rail
	Waterways []Waterway
	Stops     []Stop
	Routes    []Route
}

// EntityCount returns the number of entities across all categories.
func (n *Network) EntityCount() int {
	return len(n.Roads) + len(n.Rails) + len(n.Waterways) +
		len(n.Stops) + len(n.Routes)
}

// Coordinates returns every geodetic coordinate in the network, in entity
// order. The projector uses this to collect the distinct points that need
// an elevation sample.
func (n *Network) Coordinates() []orb.Point {
	var coords []orb.Point
	for _, r := range n.Roads {
		coords = append(coords, r.Points...)
	}
	for _, r := range n.Rails {
		coords = append(coords, r.Points...)
	}
	for _, w := range n.Waterways {
		coords = append(coords, w.Points...)
	}
	for _, s := range n.Stops {
		coords = append(coords, s.Position)
	}
	return coords
}
