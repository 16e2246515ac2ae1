package parser

// Closed tag vocabularies. Classification is an explicit step: a tag value
// outside the vocabulary rejects the feature with a validation event rather
// than guessing a default class, so the output stays well-typed.

// roadClasses maps highway tag values to scene road types.
var roadClasses = map[string]string{
	"motorway":    "Highway",
	"trunk":       "Highway",
	"primary":     "LargeRoad",
	"secondary":   "MediumRoad",
	"tertiary":    "SmallRoad",
	"residential": "SmallRoad",
	"service":     "TinyRoad",
}

// roadPriority ranks highway tag values for consumer-side ordering.
// Higher means more important.
var roadPriority = map[string]int{
	"motorway":    5,
	"trunk":       4,
	"primary":     3,
	"secondary":   2,
	"tertiary":    1,
	"residential": 0,
	"service":     0,
}

// RoadClass resolves a highway tag value to a scene road type and priority
// rank. ok is false for values outside the vocabulary.
func RoadClass(highway string) (class string, priority int, ok bool) {
	class, ok = roadClasses[highway]
	if !ok {
		return "", 0, false
	}
	return class, roadPriority[highway], true
}

// railClasses maps railway tag values to scene rail types.
var railClasses = map[string]string{
	"rail":       "Train",
	"light_rail": "Metro",
	"subway":     "Subway",
	"tram":       "Tram",
}

// RailClass resolves a railway tag value to a scene rail type.
func RailClass(railway string) (class string, ok bool) {
	class, ok = railClasses[railway]
	return class, ok
}

// linearWaterways maps waterway tag values to scene water types.
var linearWaterways = map[string]string{
	"river":  "River",
	"stream": "Stream",
	"canal":  "Canal",
	"drain":  "Drain",
	"ditch":  "Drain",
}

// WaterwayClass classifies a water feature from its tag set.
//
// Linear features: waterway=river|stream|canal|drain|ditch and
// natural=coastline. Area features: natural=water (lakes, ponds) and
// landuse=reservoir; these require a closed ring.
func WaterwayClass(tags map[string]string) (class string, isArea, ok bool) {
	if c, found := linearWaterways[tags["waterway"]]; found {
		return c, false, true
	}
	if tags["natural"] == "coastline" {
		return "Coastline", false, true
	}
	if tags["natural"] == "water" {
		if tags["water"] == "reservoir" {
			return "Reservoir", true, true
		}
		return "Lake", true, true
	}
	if tags["landuse"] == "reservoir" {
		return "Reservoir", true, true
	}
	return "", false, false
}

// StopMode classifies a transit stop node into one of the four scene modes:
// bus, tram, train, subway.
func StopMode(tags map[string]string) (mode string, ok bool) {
	if tags["highway"] == "bus_stop" {
		return "bus", true
	}
	switch tags["railway"] {
	case "tram_stop":
		return "tram", true
	case "station", "halt", "stop":
		if tags["station"] == "subway" || tags["subway"] == "yes" {
			return "subway", true
		}
		return "train", true
	}
	if _, found := tags["public_transport"]; found {
		// Mode hint tags on public_transport nodes, most specific first.
		switch {
		case tags["subway"] == "yes":
			return "subway", true
		case tags["tram"] == "yes":
			return "tram", true
		case tags["train"] == "yes":
			return "train", true
		case tags["bus"] == "yes":
			return "bus", true
		}
		return "bus", true // street-level stop_position without a mode hint
	}
	return "", false
}

// routeTypes maps route relation tag values to scene transit line types.
var routeTypes = map[string]string{
	"bus":        "BusLine",
	"tram":       "TramLine",
	"train":      "TrainLine",
	"subway":     "SubwayLine",
	"light_rail": "MetroLine",
}

// RouteType resolves a route tag value to a scene transit line type.
func RouteType(route string) (class string, ok bool) {
	class, ok = routeTypes[route]
	return class, ok
}
