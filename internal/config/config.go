package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkoehler/allergy-diary/internal/geo"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

// Source names accepted for the pollen provider choice.
const (
	SourcePollenstiftung = "pollenstiftung"
	SourceDWD            = "dwd"
)

type AppConfig struct {
	// StorePath is the diary CSV file. Explicit configuration, not a
	// module-level constant.
	StorePath string

	// Home is the default location used when a request carries no
	// coordinates, and the location the prefetch job warms.
	Home weather.Location

	// DefaultSource is the pollen provider used when a request names none.
	DefaultSource string

	// Upstream endpoints.
	MeteostatBaseURL      string
	MeteostatAPIKey       string
	PollenstiftungBaseURL string
	DWDPollenBaseURL      string
	DWDPollenStationID    string

	// HTTPTimeout applies to the shared outbound client.
	HTTPTimeout time.Duration

	// PrefetchInterval controls the home-location prefetch job (0 disables).
	PrefetchInterval time.Duration

	// Cache retention.
	CacheMaxEntries int
	CacheMaxAge     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.StorePath = getenvDefault("STORE_PATH", "allergy_diary.csv")
	cfg.DefaultSource = getenvDefault("POLLEN_SOURCE", SourcePollenstiftung)
	if cfg.DefaultSource != SourcePollenstiftung && cfg.DefaultSource != SourceDWD {
		return nil, fmt.Errorf("invalid POLLEN_SOURCE %q (allowed: %s, %s)",
			cfg.DefaultSource, SourcePollenstiftung, SourceDWD)
	}

	cfg.MeteostatBaseURL = getenvDefault("METEOSTAT_BASE_URL", "https://meteostat.p.rapidapi.com")
	cfg.MeteostatAPIKey = os.Getenv("METEOSTAT_API_KEY")
	cfg.PollenstiftungBaseURL = getenvDefault("POLLENSTIFTUNG_URL", "https://www.pollenstiftung.de/services/forecast")
	cfg.DWDPollenBaseURL = getenvDefault("DWD_POLLEN_BASE_URL", "https://opendata.dwd.de/climate_environment/health/pollen_stations")
	cfg.DWDPollenStationID = getenvDefault("DWD_POLLEN_STATION_ID", "001")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	prefetchStr := getenvDefault("PREFETCH_INTERVAL", "6h")
	prefetch, err := time.ParseDuration(prefetchStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PREFETCH_INTERVAL: %w", err)
	}
	cfg.PrefetchInterval = prefetch

	cfg.CacheMaxEntries = getenvInt("CACHE_MAX_ENTRIES", 64)

	maxAgeStr := getenvDefault("CACHE_MAX_AGE", "12h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_MAX_AGE: %w", err)
	}
	cfg.CacheMaxAge = maxAge

	cfg.Port = getenvDefault("PORT", "8080")

	home, err := loadHomeLocation()
	if err != nil {
		return nil, err
	}
	cfg.Home = home

	return cfg, nil
}

// loadHomeLocation resolves the home location from HOME_LAT/HOME_LON, or by
// geocoding HOME_CITY when a geocoder API key is configured. Defaults to the
// centre of Germany.
func loadHomeLocation() (weather.Location, error) {
	latStr := os.Getenv("HOME_LAT")
	lonStr := os.Getenv("HOME_LON")

	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return weather.Location{}, fmt.Errorf("invalid HOME_LAT: %q", latStr)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return weather.Location{}, fmt.Errorf("invalid HOME_LON: %q", lonStr)
		}
		loc := weather.Location{Lat: lat, Lon: lon}
		if !loc.Valid() {
			return weather.Location{}, fmt.Errorf("HOME_LAT/HOME_LON out of range: %s", loc.Key())
		}
		return loc, nil
	}

	if city := os.Getenv("HOME_CITY"); city != "" {
		loc, err := geo.Resolve(os.Getenv("GEOCODER_API_KEY"), city, os.Getenv("HOME_COUNTRY"))
		if err != nil {
			return weather.Location{}, err
		}
		return loc, nil
	}

	return weather.Location{Lat: 51.16, Lon: 10.45}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
