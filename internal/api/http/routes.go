package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mkoehler/allergy-diary/internal/diary"
	"github.com/mkoehler/allergy-diary/internal/observations"
	"github.com/mkoehler/allergy-diary/internal/pollen"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

var validate = validator.New()

// Defaults are applied when a request omits location, date, or source.
type Defaults struct {
	Home   weather.Location
	Source string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
//
// The fetch trigger (GET /observations) and the save trigger (POST /entries)
// are deliberately independent: saving never requires a fetch in the same
// interaction cycle.
func RegisterRoutes(app *fiber.App, obs *observations.Service, diarySvc *diary.Service, defaults Defaults) {
	v1 := app.Group("/api/v1")

	v1.Get("/observations", func(c *fiber.Ctx) error {
		req, err := parseObservationQuery(c, defaults)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if !obs.HasSource(req.Source) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown pollen source: "+req.Source)
		}

		// Degraded upstreams surface as absent fields, never as an error.
		snapshot := obs.Fetch(c.Context(), req.Location, req.Date, req.Source)
		return c.JSON(snapshot)
	})

	v1.Post("/entries", func(c *fiber.Ctx) error {
		var req entryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		entry, err := req.toEntry()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Persistence is the one error class that must reach the user.
		if err := diarySvc.Record(entry); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save diary entry: "+err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	v1.Get("/entries", func(c *fiber.Ctx) error {
		entries, err := diarySvc.Entries()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read diary entries")
		}
		return c.JSON(fiber.Map{
			"count":   len(entries),
			"entries": entries,
		})
	})
}

// observationQuery holds the parameters of the fetch-and-display trigger.
type observationQuery struct {
	Location weather.Location
	Date     time.Time
	Source   string
}

func parseObservationQuery(c *fiber.Ctx, defaults Defaults) (observationQuery, error) {
	q := observationQuery{
		Location: defaults.Home,
		Date:     weather.DateOf(time.Now()),
		Source:   defaults.Source,
	}

	if latStr := c.Query("lat"); latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return q, errors.New("invalid lat: " + latStr)
		}
		q.Location.Lat = lat
	}
	if lonStr := c.Query("lon"); lonStr != "" {
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return q, errors.New("invalid lon: " + lonStr)
		}
		q.Location.Lon = lon
	}
	if !q.Location.Valid() {
		return q, errors.New("coordinates out of range")
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := weather.ParseDate(dateStr)
		if err != nil {
			return q, err
		}
		q.Date = date
	}

	if source := c.Query("source"); source != "" {
		q.Source = source
	}

	return q, nil
}

// entryRequest is the save-trigger body. Weather and pollen values are the
// ones the client displayed; any of them may be absent and the entry is
// still written. Symptoms are required and bounded 0-10.
type entryRequest struct {
	Date string  `json:"date" validate:"required"`
	Lat  float64 `json:"lat" validate:"min=-90,max=90"`
	Lon  float64 `json:"lon" validate:"min=-180,max=180"`

	Weather weather.Reading `json:"weather"`
	Pollen  pollen.Reading  `json:"pollen"`

	Symptoms diary.Symptoms `json:"symptoms"`
	Notes    string         `json:"notes"`
}

func (r entryRequest) toEntry() (diary.Entry, error) {
	date, err := weather.ParseDate(r.Date)
	if err != nil {
		return diary.Entry{}, err
	}

	return diary.Entry{
		Date:     date,
		Location: weather.Location{Lat: r.Lat, Lon: r.Lon},
		Weather:  r.Weather,
		Pollen:   r.Pollen,
		Symptoms: r.Symptoms,
		Notes:    r.Notes,
	}, nil
}
