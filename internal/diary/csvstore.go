package diary

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mkoehler/allergy-diary/internal/pollen"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

// columns is the store schema. It is fixed by the first write; every append
// must produce exactly this column order or the file becomes inconsistent.
var columns = []string{
	"date", "lat", "lon",
	"tavg", "rhum", "prcp",
	"birch", "grasses", "ambrosia",
	"fatigue", "runny_nose", "sore_throat",
	"notes",
}

// CSVStore is an append-only diary store backed by a single CSV file.
// Single-writer, single-process: each append is one write plus one flush,
// with no locking beyond that.
type CSVStore struct {
	path string
}

// NewCSVStore creates a store for the given file path. The file is not
// touched until the first append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the store file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Append writes one entry as a new row. On a fresh or empty file the header
// row is written first; an existing file is appended to as-is. I/O errors
// are returned to the caller: persistence is the one place failures must be
// visible rather than swallowed.
func (s *CSVStore) Append(entry Entry) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open diary store: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat diary store: %w", err)
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 {
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("write diary header: %w", err)
		}
	}

	if err := w.Write(entryToRecord(entry)); err != nil {
		return fmt.Errorf("write diary entry: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush diary entry: %w", err)
	}
	return nil
}

// ReadAll returns every entry in the store in file order. A store that does
// not exist yet reads as empty.
func (s *CSVStore) ReadAll() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open diary store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	// Skip the header row.
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read diary header: %w", err)
	}

	var entries []Entry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read diary entry: %w", err)
		}

		entry, err := recordToEntry(record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func entryToRecord(e Entry) []string {
	return []string{
		e.Date.Format("2006-01-02"),
		formatFloat(e.Location.Lat),
		formatFloat(e.Location.Lon),
		formatOptional(e.Weather.Tavg),
		formatOptional(e.Weather.Rhum),
		formatOptional(e.Weather.Prcp),
		formatOptional(e.Pollen.Birch),
		formatOptional(e.Pollen.Grasses),
		formatOptional(e.Pollen.Ambrosia),
		strconv.Itoa(e.Symptoms.Fatigue),
		strconv.Itoa(e.Symptoms.RunnyNose),
		strconv.Itoa(e.Symptoms.SoreThroat),
		e.Notes,
	}
}

func recordToEntry(record []string) (Entry, error) {
	if len(record) != len(columns) {
		return Entry{}, fmt.Errorf("diary row has %d columns, want %d", len(record), len(columns))
	}

	date, err := time.Parse("2006-01-02", record[0])
	if err != nil {
		return Entry{}, fmt.Errorf("diary row date %q: %w", record[0], err)
	}

	lat, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("diary row lat %q: %w", record[1], err)
	}
	lon, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("diary row lon %q: %w", record[2], err)
	}

	fatigue, err := strconv.Atoi(record[9])
	if err != nil {
		return Entry{}, fmt.Errorf("diary row fatigue %q: %w", record[9], err)
	}
	runnyNose, err := strconv.Atoi(record[10])
	if err != nil {
		return Entry{}, fmt.Errorf("diary row runny_nose %q: %w", record[10], err)
	}
	soreThroat, err := strconv.Atoi(record[11])
	if err != nil {
		return Entry{}, fmt.Errorf("diary row sore_throat %q: %w", record[11], err)
	}

	return Entry{
		Date:     date,
		Location: weather.Location{Lat: lat, Lon: lon},
		Weather: weather.Reading{
			Tavg: parseOptional(record[3]),
			Rhum: parseOptional(record[4]),
			Prcp: parseOptional(record[5]),
		},
		Pollen: pollen.Reading{
			Birch:    parseOptional(record[6]),
			Grasses:  parseOptional(record[7]),
			Ambrosia: parseOptional(record[8]),
		},
		Symptoms: Symptoms{
			Fatigue:    fatigue,
			RunnyNose:  runnyNose,
			SoreThroat: soreThroat,
		},
		Notes: record[12],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatOptional serializes an absent value as an empty cell.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
