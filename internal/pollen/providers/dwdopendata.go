package providers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mkoehler/allergy-diary/internal/common"
	"github.com/mkoehler/allergy-diary/internal/fetch"
	"github.com/mkoehler/allergy-diary/internal/pollen"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

// dayFirstFormats are the date layouts accepted in the dataset's date
// column. DWD files are day-first; ISO is accepted as a fallback.
var dayFirstFormats = []string{"02.01.2006", "02/01/2006", "2006-01-02"}

// DWDOpenDataProvider implements the pollen.Provider interface for the DWD
// open-data pollen dataset: one CSV file per station, one row per day.
//
// The station id is fixed configuration rather than resolved from the
// coordinates; there is no published station inventory to resolve against.
type DWDOpenDataProvider struct {
	name      string
	baseURL   string
	stationID string
	httpCfg   fetch.ClientConfig
	circuit   *gobreaker.CircuitBreaker
}

func NewDWDOpenDataProvider(client *http.Client, baseURL, stationID string) *DWDOpenDataProvider {
	return &DWDOpenDataProvider{
		name:      "dwd-open-data",
		baseURL:   baseURL,
		stationID: stationID,
		httpCfg: fetch.ClientConfig{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker("dwd-open-data"),
	}
}

func (p *DWDOpenDataProvider) Name() string {
	return p.name
}

func (p *DWDOpenDataProvider) Fetch(ctx context.Context, _ weather.Location, date time.Time) (pollen.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s.csv", p.baseURL, p.stationID)
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

	reader := csv.NewReader(resp.Body)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return pollen.Reading{}, fmt.Errorf("dwd dataset %s: %w", p.stationID, err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return pollen.Reading{}, fmt.Errorf("dwd dataset %s: %w", p.stationID, err)
	}

	target := weather.DateOf(date)

	// First row matching the date wins; additional rows for the same day are
	// ignored and zero matches yield an empty reading.
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) <= cols.date {
			continue
		}

		day, ok := parseDayFirst(record[cols.date])
		if !ok || !day.Equal(target) {
			continue
		}

		return pollen.Reading{
			Birch:    indexAt(record, cols.birch),
			Grasses:  indexAt(record, cols.grasses),
			Ambrosia: indexAt(record, cols.ambrosia),
		}, nil
	}

	return pollen.Reading{}, nil
}

// columnIndexes holds the positions of the date and allergen columns in a
// dataset file. An allergen column may be missing (-1).
type columnIndexes struct {
	date     int
	birch    int
	grasses  int
	ambrosia int
}

func mapColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{date: -1, birch: -1, grasses: -1, ambrosia: -1}

	for i, label := range header {
		switch folded := common.Fold(label); {
		case common.HasAny(folded, "date", "datum"):
			cols.date = i
		case common.HasAny(folded, "birke", "birch"):
			cols.birch = i
		case common.HasAny(folded, "graeser", "grasses"):
			cols.grasses = i
		case common.HasAny(folded, "ambrosia"):
			cols.ambrosia = i
		}
	}

	if cols.date < 0 {
		return cols, fmt.Errorf("no date column in header %v", header)
	}
	return cols, nil
}

func parseDayFirst(s string) (time.Time, bool) {
	for _, layout := range dayFirstFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return weather.DateOf(ts), true
		}
	}
	return time.Time{}, false
}

func indexAt(record []string, col int) *float64 {
	if col < 0 || col >= len(record) || record[col] == "" {
		return nil
	}
	v, err := strconv.ParseFloat(record[col], 64)
	if err != nil {
		return nil
	}
	return &v
}
