package pollen

import (
	"context"
	"time"

	"github.com/mkoehler/allergy-diary/internal/weather"
)

// Provider abstracts a pollen data source (forecast service or open-data
// dataset). Implementations return an error on network or parse failure and
// an empty Reading when the source simply has no data; callers decide how
// to present either case.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc weather.Location, date time.Time) (Reading, error)
}
