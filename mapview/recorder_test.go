package mapview

import (
	"encoding/json"
	"testing"

	"maps-directions/entities"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start = entities.Annotation{Coordinates: entities.Coordinates{Lat: 37.80, Lng: -122.40}, Label: "Ferry Building", Role: entities.RoleStart}
	end   = entities.Annotation{Coordinates: entities.Coordinates{Lat: 37.70, Lng: -122.50}, Label: "Zoo", Role: entities.RoleEnd}
)

func TestRecorder_DrawAndClear(t *testing.T) {
	r := NewRecorder(DefaultStyle(), DefaultRegion())

	r.AddAnnotation(start)
	r.AddAnnotation(end)
	r.SetOverlay([]entities.Coordinates{start.Coordinates, end.Coordinates})
	r.ShowLoading("Routing...")

	s := r.Snapshot()
	assert.Len(t, s.Annotations, 2)
	assert.Len(t, s.Overlay, 2)
	assert.True(t, s.Loading)
	assert.Equal(t, "Routing...", s.LoadingLabel)

	r.RemoveAllAnnotations()
	r.ClearOverlay()
	r.HideLoading()

	s = r.Snapshot()
	assert.Empty(t, s.Annotations)
	assert.Empty(t, s.Overlay)
	assert.False(t, s.Loading)
}

func TestRecorder_SnapshotIsACopy(t *testing.T) {
	r := NewRecorder(DefaultStyle(), DefaultRegion())
	path := []entities.Coordinates{{Lat: 1, Lng: 2}}
	r.SetOverlay(path)
	path[0].Lat = 99

	s := r.Snapshot()
	assert.Equal(t, 1.0, s.Overlay[0].Lat)
	s.Overlay[0].Lat = 42
	assert.Equal(t, 1.0, r.Snapshot().Overlay[0].Lat)
}

func TestFit(t *testing.T) {
	fallback := DefaultRegion()

	assert.Equal(t, fallback, Fit(nil, fallback))

	single := Fit([]entities.Annotation{start}, fallback)
	assert.Equal(t, start.Coordinates, single.Center)
	assert.Equal(t, fallback.LatSpan, single.LatSpan)

	both := Fit([]entities.Annotation{start, end}, fallback)
	assert.InDelta(t, 37.75, both.Center.Lat, 1e-9)
	assert.InDelta(t, -122.45, both.Center.Lng, 1e-9)
	assert.InDelta(t, 0.12, both.LatSpan, 1e-9)
	assert.InDelta(t, 0.12, both.LngSpan, 1e-9)
}

func TestFit_SameLatitudeKeepsFallbackLatSpan(t *testing.T) {
	fallback := DefaultRegion()
	west := entities.Annotation{Coordinates: entities.Coordinates{Lat: 37.77, Lng: -122.50}, Role: entities.RoleStart}
	east := entities.Annotation{Coordinates: entities.Coordinates{Lat: 37.77, Lng: -122.40}, Role: entities.RoleEnd}

	got := Fit([]entities.Annotation{west, east}, fallback)
	assert.InDelta(t, 37.77, got.Center.Lat, 1e-9)
	assert.Equal(t, fallback.LatSpan, got.LatSpan)
	assert.InDelta(t, 0.12, got.LngSpan, 1e-9)

	north := entities.Annotation{Coordinates: entities.Coordinates{Lat: 37.80, Lng: -122.40}}
	got = Fit([]entities.Annotation{east, north}, fallback)
	assert.Equal(t, fallback.LngSpan, got.LngSpan)
	assert.InDelta(t, 0.036, got.LatSpan, 1e-9)
}

func TestRecorder_FitToAnnotations(t *testing.T) {
	r := NewRecorder(DefaultStyle(), DefaultRegion())
	r.AddAnnotation(start)
	r.FitToAnnotations()
	assert.Equal(t, start.Coordinates, r.Snapshot().Viewport.Center)
}

func TestRecorder_GeoJSON(t *testing.T) {
	r := NewRecorder(Style{StrokeColor: "#ff0000", LineWidth: 3}, DefaultRegion())
	r.AddAnnotation(start)
	r.AddAnnotation(end)
	r.SetOverlay([]entities.Coordinates{start.Coordinates, end.Coordinates})

	data, err := r.GeoJSON()
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	assert.Equal(t, orb.Point{-122.40, 37.80}, fc.Features[0].Geometry)
	assert.Equal(t, "Ferry Building", fc.Features[0].Properties["label"])
	assert.Equal(t, "end", fc.Features[1].Properties["role"])

	line, ok := fc.Features[2].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, line, 2)
	assert.Equal(t, "#ff0000", fc.Features[2].Properties["stroke"])

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "FeatureCollection", raw["type"])
}
