package diary

import (
	"time"

	"github.com/mkoehler/allergy-diary/internal/pollen"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

// Symptoms are the self-reported severity scores, each on a 0-10 scale.
// Unlike everything else in an entry they are always present.
type Symptoms struct {
	Fatigue    int `json:"fatigue" validate:"min=0,max=10"`
	RunnyNose  int `json:"runnyNose" validate:"min=0,max=10"`
	SoreThroat int `json:"soreThroat" validate:"min=0,max=10"`
}

// Entry is one diary record: date, location, whatever weather and pollen
// data could be fetched, the symptom scores, and free-text notes. Entries
// are built once per submission, appended to the store, and never mutated.
type Entry struct {
	Date     time.Time        `json:"date"`
	Location weather.Location `json:"location"`
	Weather  weather.Reading  `json:"weather"`
	Pollen   pollen.Reading   `json:"pollen"`
	Symptoms Symptoms         `json:"symptoms"`
	Notes    string           `json:"notes"`
}
