// Package mapview holds the map surfaces the directions screen draws on.
package mapview

import "maps-directions/entities"

// Style is how the route overlay is painted.
type Style struct {
	StrokeColor string  `json:"stroke_color"`
	LineWidth   float64 `json:"line_width"`
}

// Region is a visible map area: a center and its extent in degrees.
type Region struct {
	Center  entities.Coordinates `json:"center"`
	LatSpan float64              `json:"lat_span"`
	LngSpan float64              `json:"lng_span"`
}

func DefaultStyle() Style {
	return Style{StrokeColor: "#4286F5", LineWidth: 5}
}

// DefaultRegion is central San Francisco.
func DefaultRegion() Region {
	return Region{
		Center:  entities.Coordinates{Lat: 37.7666, Lng: -122.427290},
		LatSpan: 0.1,
		LngSpan: 0.1,
	}
}
