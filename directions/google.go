// Package directions turns Google Directions responses into the screen's
// route model.
package directions

import (
	"context"
	"fmt"
	"strings"

	"maps-directions/entities"

	"github.com/kr/pretty"
	"go.uber.org/zap"
	maps "googlemaps.github.io/maps"
)

// Client is the subset of *maps.Client used here.
type Client interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

type Options struct {
	Mode         maps.Mode
	Alternatives bool
	// StreetNames resolves a street name for every step start through
	// reverse geocoding. One extra request per step.
	StreetNames bool
}

type Google struct {
	client Client
	opts   Options
	logger *zap.Logger
}

func NewGoogle(client Client, opts Options, logger *zap.Logger) *Google {
	if opts.Mode == "" {
		opts.Mode = maps.TravelModeDriving
	}
	return &Google{client: client, opts: opts, logger: logger}
}

// ParseMode maps a config value onto a travel mode, defaulting to driving.
func ParseMode(s string) (maps.Mode, error) {
	switch strings.ToLower(s) {
	case "", "driving":
		return maps.TravelModeDriving, nil
	case "walking":
		return maps.TravelModeWalking, nil
	case "bicycling":
		return maps.TravelModeBicycling, nil
	case "transit":
		return maps.TravelModeTransit, nil
	default:
		return "", fmt.Errorf("unknown travel mode %q", s)
	}
}

// Directions returns every candidate route for the pair in the order the
// service ranked them. A ZERO_RESULTS answer is an empty list, not an error.
func (g *Google) Directions(ctx context.Context, start, end entities.PlaceSelection) ([]entities.Route, error) {
	dr := &maps.DirectionsRequest{
		Origin:       start.Location.String(),
		Destination:  end.Location.String(),
		Mode:         g.opts.Mode,
		Alternatives: g.opts.Alternatives,
	}

	routesResp, _, err := g.client.Directions(ctx, dr)
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return []entities.Route{}, nil
		}
		return nil, fmt.Errorf("directions %s -> %s: %w", dr.Origin, dr.Destination, err)
	}

	out := make([]entities.Route, 0, len(routesResp))
	for i, rt := range routesResp {
		route, err := g.convert(ctx, i+1, rt)
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	if ce := g.logger.Check(zap.DebugLevel, "directions response"); ce != nil {
		ce.Write(zap.String("routes", pretty.Sprint(out)))
	}
	return out, nil
}

func (g *Google) convert(ctx context.Context, id int, rt maps.Route) (entities.Route, error) {
	route := entities.Route{ID: id, Summary: rt.Summary}

	overview, err := rt.OverviewPolyline.Decode()
	if err != nil {
		return entities.Route{}, fmt.Errorf("decode overview polyline: %w", err)
	}
	route.Path = toCoordinates(overview)

	points := []entities.Point{}
	for _, leg := range rt.Legs {
		route.DistanceMeters += leg.Distance.Meters
		route.Duration += leg.Duration
		for _, step := range leg.Steps {
			path, err := step.Polyline.Decode()
			if err != nil {
				return entities.Route{}, fmt.Errorf("decode step polyline: %w", err)
			}
			instructions := StripHTML(step.HTMLInstructions)
			route.Steps = append(route.Steps, entities.Step{
				Instructions:   instructions,
				Path:           toCoordinates(path),
				StartLocation:  toCoordinate(step.StartLocation),
				EndLocation:    toCoordinate(step.EndLocation),
				DistanceMeters: step.Distance.Meters,
				Duration:       step.Duration,
			})

			desc := ""
			if g.opts.StreetNames {
				desc = g.streetName(ctx, step.StartLocation)
			}
			if desc == "" {
				desc = instructions
			}
			points = append(points, entities.Point{Lat: step.StartLocation.Lat, Lng: step.StartLocation.Lng, Description: desc})
		}
		// include final end location of leg
		endDesc := leg.EndAddress
		if g.opts.StreetNames {
			if name := g.streetName(ctx, leg.EndLocation); name != "" {
				endDesc = name
			}
		}
		points = append(points, entities.Point{Lat: leg.EndLocation.Lat, Lng: leg.EndLocation.Lng, Description: endDesc})
	}
	route.Points = points

	// Routes without an overview fall back to the concatenated step geometry.
	if len(route.Path) == 0 {
		for _, s := range route.Steps {
			route.Path = append(route.Path, s.Path...)
		}
	}
	return route, nil
}

func (g *Google) streetName(ctx context.Context, at maps.LatLng) string {
	resp, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
	})
	if err != nil || len(resp) == 0 {
		if err != nil {
			g.logger.Debug("reverse geocode failed", zap.Error(err))
		}
		return ""
	}
	// prefer the first result's address component with type "route"
	for _, comp := range resp[0].AddressComponents {
		for _, t := range comp.Types {
			if t == "route" {
				return comp.LongName
			}
		}
	}
	return resp[0].FormattedAddress
}

// StripHTML drops markup tags from Google's html_instructions.
func StripHTML(s string) string {
	out := make([]rune, 0, len(s))
	inTag := false
	for _, r := range s {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			out = append(out, r)
		}
	}
	return strings.TrimSpace(string(out))
}

func toCoordinate(ll maps.LatLng) entities.Coordinates {
	return entities.Coordinates{Lat: ll.Lat, Lng: ll.Lng}
}

func toCoordinates(path []maps.LatLng) []entities.Coordinates {
	out := make([]entities.Coordinates, len(path))
	for i, ll := range path {
		out[i] = toCoordinate(ll)
	}
	return out
}
