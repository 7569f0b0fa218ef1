package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := loadFrom(env(map[string]string{"GOOGLE_MAPS_API_KEY": "key"}))
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.APIKey)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "driving", cfg.TravelMode)
	assert.Equal(t, "discard", cfg.StalePolicy)
	assert.Equal(t, "#4286F5", cfg.RouteStrokeColor)
	assert.Equal(t, 5.0, cfg.RouteLineWidth)
	assert.Equal(t, 37.7666, cfg.MapCenterLat)
	assert.Equal(t, -122.427290, cfg.MapCenterLng)
	assert.Equal(t, 0.1, cfg.MapSpan)
	assert.Zero(t, cfg.RequestTimeout)
	assert.False(t, cfg.StreetNames)
	assert.Empty(t, cfg.NtfyErrorTopic)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := loadFrom(env(map[string]string{
		"GOOGLE_MAPS_API_KEY": "key",
		"PORT":                ":9090",
		"TRAVEL_MODE":         "walking",
		"STREET_NAMES":        "true",
		"ROUTE_ALTERNATIVES":  "1",
		"REQUEST_TIMEOUT":     "3s",
		"ROUTE_LINE_WIDTH":    "7.5",
		"NTFY_ERROR_TOPIC":    "route-errors",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "walking", cfg.TravelMode)
	assert.True(t, cfg.StreetNames)
	assert.True(t, cfg.RouteAlternatives)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 7.5, cfg.RouteLineWidth)
	assert.Equal(t, "route-errors", cfg.NtfyErrorTopic)
}

func TestLoadFrom_Errors(t *testing.T) {
	_, err := loadFrom(env(map[string]string{}))
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = loadFrom(env(map[string]string{"GOOGLE_MAPS_API_KEY": "key", "MAP_SPAN": "wide"}))
	assert.ErrorContains(t, err, "MAP_SPAN")

	_, err = loadFrom(env(map[string]string{"GOOGLE_MAPS_API_KEY": "key", "REQUEST_TIMEOUT": "soon"}))
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")

	_, err = loadFrom(env(map[string]string{"GOOGLE_MAPS_API_KEY": "key", "STREET_NAMES": "maybe"}))
	assert.ErrorContains(t, err, "STREET_NAMES")
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "from-env")
	t.Setenv("PORT", ":7070")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, ":7070", cfg.Port)
}
