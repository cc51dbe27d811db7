package geo

import (
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/mkoehler/allergy-diary/internal/weather"
)

// Resolve geocodes a city (optionally qualified by country) into
// coordinates. Requires a Google geocoding API key.
func Resolve(apiKey, city, country string) (weather.Location, error) {
	if apiKey == "" {
		return weather.Location{}, fmt.Errorf("geocoding requires an API key")
	}
	if city == "" {
		return weather.Location{}, fmt.Errorf("geocoding requires a city")
	}

	geocoder.ApiKey = apiKey

	address := geocoder.Address{
		City:    city,
		Country: country,
	}

	loc, err := geocoder.Geocoding(address)
	if err != nil {
		return weather.Location{}, fmt.Errorf("geocode %q: %w", city, err)
	}

	return weather.Location{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}
