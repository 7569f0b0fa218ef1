package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingAPIKey = errors.New("set GOOGLE_MAPS_API_KEY environment variable")

type Config struct {
	APIKey string
	Port   string
	AppEnv string

	TravelMode        string
	RouteAlternatives bool
	StreetNames       bool
	StalePolicy       string
	RequestTimeout    time.Duration

	NtfyBaseURL    string
	NtfyErrorTopic string
	NtfyInfoTopic  string

	RouteStrokeColor string
	RouteLineWidth   float64
	MapCenterLat     float64
	MapCenterLng     float64
	MapSpan          float64
}

// LoadConfig reads .env (if present) and lets the process environment
// override every key.
func LoadConfig() (*Config, error) {
	envFile, _ := godotenv.Read(".env")
	return loadFrom(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return envFile[key]
	})
}

func loadFrom(get func(string) string) (*Config, error) {
	str := func(key, def string) string {
		if v := get(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		APIKey:           get("GOOGLE_MAPS_API_KEY"),
		Port:             str("PORT", ":8080"),
		AppEnv:           str("APP_ENV", "development"),
		TravelMode:       str("TRAVEL_MODE", "driving"),
		StalePolicy:      str("STALE_POLICY", "discard"),
		NtfyBaseURL:      str("NTFY_BASE_URL", "https://ntfy.sh/"),
		NtfyErrorTopic:   get("NTFY_ERROR_TOPIC"),
		NtfyInfoTopic:    get("NTFY_INFO_TOPIC"),
		RouteStrokeColor: str("ROUTE_STROKE_COLOR", "#4286F5"),
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var err error
	if cfg.RouteAlternatives, err = parseBool(get, "ROUTE_ALTERNATIVES", false); err != nil {
		return nil, err
	}
	if cfg.StreetNames, err = parseBool(get, "STREET_NAMES", false); err != nil {
		return nil, err
	}
	if cfg.RouteLineWidth, err = parseFloat(get, "ROUTE_LINE_WIDTH", 5); err != nil {
		return nil, err
	}
	if cfg.MapCenterLat, err = parseFloat(get, "MAP_CENTER_LAT", 37.7666); err != nil {
		return nil, err
	}
	if cfg.MapCenterLng, err = parseFloat(get, "MAP_CENTER_LNG", -122.427290); err != nil {
		return nil, err
	}
	if cfg.MapSpan, err = parseFloat(get, "MAP_SPAN", 0.1); err != nil {
		return nil, err
	}
	if v := get("REQUEST_TIMEOUT"); v != "" {
		if cfg.RequestTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
	}
	return cfg, nil
}

func parseBool(get func(string) string, key string, def bool) (bool, error) {
	v := get(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func parseFloat(get func(string) string, key string, def float64) (float64, error) {
	v := get(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
