package weather

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Location is a geographic point for which weather and pollen are looked up.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f:%.4f", l.Lat, l.Lon)
}

// Valid reports whether the coordinates are within geographic range.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// Reading is one day of aggregated weather metrics for the station nearest
// to a location. Every field may be absent: a lookup miss or a degraded
// upstream yields the zero Reading, not an error, so downstream assembly
// stays uniform.
type Reading struct {
	Tavg *float64 `json:"tavg"` // mean temperature, degrees C
	Rhum *float64 `json:"rhum"` // relative humidity, percent
	Prcp *float64 `json:"prcp"` // precipitation, mm
}

// Empty reports whether no metric is present.
func (r Reading) Empty() bool {
	return r.Tavg == nil && r.Rhum == nil && r.Prcp == nil
}

var errInvalidDate = errors.New("invalid date; use YYYY-MM-DD or unix seconds")

// ParseDate accepts an ISO calendar date ("2006-01-02") or unix seconds and
// normalizes it to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return DateOf(time.Unix(unix, 0)), nil
	}
	return time.Time{}, errInvalidDate
}

// DateOf strips the time component, returning midnight UTC of the same
// calendar day.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
