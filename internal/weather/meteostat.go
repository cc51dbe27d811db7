package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mkoehler/allergy-diary/internal/fetch"
)

// MeteostatClient resolves the nearest weather station to a coordinate pair
// and fetches its daily aggregates from a Meteostat-style JSON API.
type MeteostatClient struct {
	name    string
	baseURL string
	apiKey  string
	httpCfg fetch.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewMeteostatClient(client *http.Client, baseURL, apiKey string) *MeteostatClient {
	return &MeteostatClient{
		name:    "meteostat",
		baseURL: baseURL,
		apiKey:  apiKey,
		httpCfg: fetch.ClientConfig{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker("meteostat"),
	}
}

func (c *MeteostatClient) Name() string {
	return c.name
}

// Resolve finds the single nearest station to loc and returns its daily
// aggregate for the given calendar date. A coordinate pair with no station
// in reach, or a date the station has no row for, yields an empty Reading
// and a nil error: a lookup miss is data, not failure. Network and decode
// errors are returned to the caller, which decides the display policy.
func (c *MeteostatClient) Resolve(ctx context.Context, date time.Time, loc Location) (Reading, error) {
	if !loc.Valid() {
		return Reading{}, fmt.Errorf("meteostat: coordinates out of range: %s", loc.Key())
	}

	stationID, err := c.nearestStation(ctx, loc)
	if err != nil {
		return Reading{}, err
	}
	if stationID == "" {
		return Reading{}, nil
	}

	return c.daily(ctx, stationID, DateOf(date))
}

func (c *MeteostatClient) nearestStation(ctx context.Context, loc Location) (string, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", loc.Lat))
		values.Set("lon", fmt.Sprintf("%f", loc.Lon))
		values.Set("limit", "1")

		u := fmt.Sprintf("%s/stations/nearby?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		c.authorize(req)
		return req, nil
	}

	resp, err := fetch.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	if len(payload.Data) == 0 {
		return "", nil
	}
	return payload.Data[0].ID, nil
}

func (c *MeteostatClient) daily(ctx context.Context, stationID string, date time.Time) (Reading, error) {
	day := date.Format("2006-01-02")

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("station", stationID)
		values.Set("start", day)
		values.Set("end", day)

		u := fmt.Sprintf("%s/stations/daily?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		c.authorize(req)
		return req, nil
	}

	resp, err := fetch.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Data []struct {
			Date string   `json:"date"`
			Tavg *float64 `json:"tavg"`
			Rhum *float64 `json:"rhum"`
			Prcp *float64 `json:"prcp"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Reading{}, err
	}

	for _, row := range payload.Data {
		if row.Date == day {
			return Reading{Tavg: row.Tavg, Rhum: row.Rhum, Prcp: row.Prcp}, nil
		}
	}
	return Reading{}, nil
}

func (c *MeteostatClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}
