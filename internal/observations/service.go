package observations

import (
	"context"
	"log"
	"time"

	"github.com/mkoehler/allergy-diary/internal/pollen"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

// locationKeyer lets the cache key on anything that identifies a location.
type locationKeyer interface {
	Key() string
}

// Snapshot is one assembled observation: the weather and pollen data for a
// location and calendar date, as far as the upstreams could supply it.
type Snapshot struct {
	Location  weather.Location `json:"location"`
	Date      time.Time        `json:"date"`
	Source    string           `json:"pollenSource"`
	Weather   weather.Reading  `json:"weather"`
	Pollen    pollen.Reading   `json:"pollen"`
	Loads     Loads            `json:"pollenLoads"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// Loads are the human-readable load levels for the three allergens.
type Loads struct {
	Birch    pollen.Load `json:"birch"`
	Grasses  pollen.Load `json:"grasses"`
	Ambrosia pollen.Load `json:"ambrosia"`
}

func (s Snapshot) key() string {
	return snapshotKey(s.Location, s.Date, s.Source)
}

func snapshotKey(loc locationKeyer, date time.Time, source string) string {
	return loc.Key() + ":" + date.Format("2006-01-02") + ":" + source
}

// WeatherResolver is the station-resolution contract the service depends on.
type WeatherResolver interface {
	Name() string
	Resolve(ctx context.Context, date time.Time, loc weather.Location) (weather.Reading, error)
}

// Service assembles observation snapshots from the weather resolver and the
// selected pollen provider. This is the single seam where upstream failures
// are logged and converted into absent fields: a snapshot is always
// returned, so a degraded upstream can never block the interaction flow.
type Service struct {
	resolver  WeatherResolver
	providers map[string]pollen.Provider
	cache     *Cache
}

// NewService creates a new Service. providers is keyed by source name as
// exposed to clients.
func NewService(resolver WeatherResolver, providers map[string]pollen.Provider, cache *Cache) *Service {
	return &Service{
		resolver:  resolver,
		providers: providers,
		cache:     cache,
	}
}

// Sources lists the configured pollen source names.
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

// HasSource reports whether a pollen source with the given name is
// configured.
func (s *Service) HasSource(name string) bool {
	_, ok := s.providers[name]
	return ok
}

// Fetch returns the observation snapshot for a location, date, and pollen
// source. It never fails: lookup misses and upstream errors both surface as
// absent fields, with errors logged here and nowhere else.
func (s *Service) Fetch(ctx context.Context, loc weather.Location, date time.Time, source string) Snapshot {
	date = weather.DateOf(date)

	if s.cache != nil {
		if snap, ok := s.cache.Get(loc, date, source); ok {
			return snap
		}
	}

	snap := Snapshot{
		Location:  loc,
		Date:      date,
		Source:    source,
		FetchedAt: time.Now().UTC(),
	}

	reading, err := s.resolver.Resolve(ctx, date, loc)
	if err != nil {
		log.Printf("weather resolver %s failed for %s: %v", s.resolver.Name(), loc.Key(), err)
	} else {
		snap.Weather = reading
	}

	provider, ok := s.providers[source]
	if !ok {
		log.Printf("ERROR: unknown pollen source %q requested for %s", source, loc.Key())
	} else {
		pr, err := provider.Fetch(ctx, loc, date)
		if err != nil {
			log.Printf("pollen provider %s fetch failed for %s: %v", provider.Name(), loc.Key(), err)
		} else {
			snap.Pollen = pr
		}
	}

	snap.Loads = Loads{
		Birch:    pollen.LoadOf(snap.Pollen.Birch),
		Grasses:  pollen.LoadOf(snap.Pollen.Grasses),
		Ambrosia: pollen.LoadOf(snap.Pollen.Ambrosia),
	}

	// Cache only snapshots that carry data; an all-absent result would pin
	// a degraded upstream's answer until the entry expires.
	if s.cache != nil && (!snap.Weather.Empty() || !snap.Pollen.Empty()) {
		s.cache.Save(snap)
	}

	return snap
}
