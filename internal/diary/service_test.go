package diary

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mkoehler/allergy-diary/internal/weather"
)

// TestRecordNormalizesDate verifies that entries are stored with a plain
// calendar date regardless of the submitted time component.
func TestRecordNormalizesDate(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "diary.csv"))
	svc := NewService(store)

	entry := testEntry(1)
	entry.Date = time.Date(2024, 5, 1, 17, 30, 12, 0, time.UTC)

	if err := svc.Record(entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if len(entries) != 1 || !entries[0].Date.Equal(want) {
		t.Fatalf("expected one entry dated %v, got %+v", want, entries)
	}
}

// TestRecordSurfacesPersistenceErrors verifies that an unwritable store
// path propagates as an error instead of being swallowed: persistence is
// the one failure the user must see.
func TestRecordSurfacesPersistenceErrors(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "missing-dir", "diary.csv"))
	svc := NewService(store)

	if err := svc.Record(testEntry(1)); err == nil {
		t.Fatal("expected error for unwritable store path")
	}
}

func TestEmptyWeatherAndPollenStillRecorded(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "diary.csv"))
	svc := NewService(store)

	entry := Entry{
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Location: weather.Location{Lat: 51.16, Lon: 10.45},
		Symptoms: Symptoms{Fatigue: 7},
	}
	if err := svc.Record(entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Weather.Empty() || !entries[0].Pollen.Empty() {
		t.Fatalf("expected absent weather and pollen, got %+v", entries[0])
	}
}
