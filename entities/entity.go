package entities

import (
	"fmt"
	"time"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the coordinates the way the Maps web services expect them.
func (c Coordinates) String() string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

type Point struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description,omitempty"`
}

// PlaceSelection is a place the user picked as the start or the end of a trip.
type PlaceSelection struct {
	Name     string      `json:"name"`
	Address  string      `json:"address,omitempty"`
	PlaceID  string      `json:"place_id,omitempty"`
	Location Coordinates `json:"location"`
}

type Step struct {
	Instructions   string        `json:"instructions"`
	Path           []Coordinates `json:"path,omitempty"`
	StartLocation  Coordinates   `json:"start_location"`
	EndLocation    Coordinates   `json:"end_location"`
	DistanceMeters int           `json:"distance_meters"`
	Duration       time.Duration `json:"duration"`
}

type Route struct {
	ID             int           `json:"id"`
	Summary        string        `json:"summary,omitempty"`
	Path           []Coordinates `json:"path"`
	Points         []Point       `json:"points"`
	Steps          []Step        `json:"steps"`
	DistanceMeters int           `json:"distance_meters"`
	Duration       time.Duration `json:"duration"`
}

type RouteOutput struct {
	Routes []Route `json:"routes"`
}

// RouteInput is a stateless directions request. Both ends are required.
type RouteInput struct {
	Start *PlaceSelection `json:"start" binding:"required"`
	End   *PlaceSelection `json:"end" binding:"required"`
}

type AnnotationRole string

const (
	RoleStart AnnotationRole = "start"
	RoleEnd   AnnotationRole = "end"
)

// Annotation is a labelled pin drawn on the map.
type Annotation struct {
	Coordinates Coordinates    `json:"coordinates"`
	Label       string         `json:"label"`
	Role        AnnotationRole `json:"role"`
}
