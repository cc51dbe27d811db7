package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mkoehler/allergy-diary/internal/fetch"
	"github.com/mkoehler/allergy-diary/internal/pollen"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

// PollenstiftungProvider implements the pollen.Provider interface for the
// Pollenstiftung forecast service. The service is keyed by coordinates only;
// it always answers for the current forecast period, so the date argument is
// not part of the request.
type PollenstiftungProvider struct {
	name    string
	baseURL string
	httpCfg fetch.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewPollenstiftungProvider(client *http.Client, baseURL string) *PollenstiftungProvider {
	return &PollenstiftungProvider{
		name:    "pollenstiftung",
		baseURL: baseURL,
		httpCfg: fetch.ClientConfig{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker("pollenstiftung"),
	}
}

func (p *PollenstiftungProvider) Name() string {
	return p.name
}

func (p *PollenstiftungProvider) Fetch(ctx context.Context, loc weather.Location, _ time.Time) (pollen.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", loc.Lat))
		values.Set("lng", fmt.Sprintf("%f", loc.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := fetch.Do(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return pollen.Reading{}, err
	}
	defer resp.Body.Close()

	// One forecast object per allergen, each carrying an "index" field.
	var payload map[string]struct {
		Index *float64 `json:"index"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return pollen.Reading{}, err
	}

	// A missing allergen key yields an absent index, never an error.
	var reading pollen.Reading
	if f, ok := payload["birke"]; ok {
		reading.Birch = f.Index
	}
	if f, ok := payload["gräser"]; ok {
		reading.Grasses = f.Index
	}
	if f, ok := payload["ambrosia"]; ok {
		reading.Ambrosia = f.Index
	}

	return reading, nil
}
