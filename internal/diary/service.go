package diary

import (
	"log"

	"github.com/mkoehler/allergy-diary/internal/weather"
)

// Store is the contract the CSV store (and any future persistent store)
// must satisfy.
type Store interface {
	Append(entry Entry) error
	ReadAll() ([]Entry, error)
}

// Service assembles diary entries and persists them.
type Service struct {
	store Store
}

// NewService creates a new Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record normalizes the entry date and appends the entry to the store.
// Missing weather or pollen fields are acceptable; the record is written
// regardless. Persistence errors are returned, never swallowed.
func (s *Service) Record(entry Entry) error {
	entry.Date = weather.DateOf(entry.Date)

	if err := s.store.Append(entry); err != nil {
		log.Printf("ERROR: failed to persist diary entry for %s: %v", entry.Date.Format("2006-01-02"), err)
		return err
	}
	return nil
}

// Entries returns all stored entries in append order.
func (s *Service) Entries() ([]Entry, error) {
	return s.store.ReadAll()
}
