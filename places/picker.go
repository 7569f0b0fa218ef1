// Package places resolves free-text searches into place selections.
package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maps-directions/entities"

	"go.uber.org/zap"
	maps "googlemaps.github.io/maps"
)

// ErrNoSelection means the search produced nothing to pick, the same outcome
// as a user dismissing the picker.
var ErrNoSelection = errors.New("no place selected")

type Client interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

type Picker struct {
	client Client
	// Bias, when set, favours results near the map's region.
	Bias   *entities.Coordinates
	Radius uint
	logger *zap.Logger
}

func NewPicker(client Client, logger *zap.Logger) *Picker {
	return &Picker{client: client, logger: logger}
}

// Search returns the candidates for query in the order the service ranked them.
func (p *Picker) Search(ctx context.Context, query string) ([]entities.PlaceSelection, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoSelection
	}
	req := &maps.TextSearchRequest{Query: query}
	if p.Bias != nil {
		req.Location = &maps.LatLng{Lat: p.Bias.Lat, Lng: p.Bias.Lng}
		req.Radius = p.Radius
	}

	resp, err := p.client.TextSearch(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return []entities.PlaceSelection{}, nil
		}
		return nil, fmt.Errorf("place search %q: %w", query, err)
	}

	out := make([]entities.PlaceSelection, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, entities.PlaceSelection{
			Name:     r.Name,
			Address:  r.FormattedAddress,
			PlaceID:  r.PlaceID,
			Location: entities.Coordinates{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		})
	}
	p.logger.Debug("place search", zap.String("query", query), zap.Int("results", len(out)))
	return out, nil
}

// Pick returns the top candidate for query, or ErrNoSelection.
func (p *Picker) Pick(ctx context.Context, query string) (entities.PlaceSelection, error) {
	candidates, err := p.Search(ctx, query)
	if err != nil {
		return entities.PlaceSelection{}, err
	}
	if len(candidates) == 0 {
		return entities.PlaceSelection{}, ErrNoSelection
	}
	return candidates[0], nil
}
