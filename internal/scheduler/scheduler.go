package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/mkoehler/allergy-diary/internal/observations"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

// Scheduler periodically prefetches the current day's observation for the
// configured home location so the interactive fetch is warm.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *observations.Service
	home      weather.Location
	source    string
	interval  time.Duration
}

// New creates a new Scheduler.
func New(home weather.Location, source string, interval time.Duration, service *observations.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		home:      home,
		source:    source,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: prefetch disabled; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Printf("scheduler: prefetching observation for %s", s.home.Key())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		today := weather.DateOf(time.Now())
		snap := s.service.Fetch(ctx, s.home, today, s.source)
		if snap.Weather.Empty() && snap.Pollen.Empty() {
			log.Printf("scheduler: no data available for %s on %s", s.home.Key(), today.Format("2006-01-02"))
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
