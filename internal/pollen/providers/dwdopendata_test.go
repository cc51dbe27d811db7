package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkoehler/allergy-diary/internal/weather"
)

func newDatasetStub(t *testing.T, stationID, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+stationID+".csv" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func TestDWDFetchMatchingRow(t *testing.T) {
	body := "date,Birke,Gräser,Ambrosia\n" +
		"30.04.2024,2,0,0\n" +
		"01.05.2024,3,1,0\n" +
		"02.05.2024,1,2,0\n"
	srv := newDatasetStub(t, "001", body)
	defer srv.Close()

	p := NewDWDOpenDataProvider(srv.Client(), srv.URL, "001")
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	reading, err := p.Fetch(context.Background(), weather.Location{Lat: 51.16, Lon: 10.45}, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reading.Birch == nil || *reading.Birch != 3 {
		t.Fatalf("unexpected birch index: %v", reading.Birch)
	}
	if reading.Grasses == nil || *reading.Grasses != 1 {
		t.Fatalf("unexpected grasses index: %v", reading.Grasses)
	}
	if reading.Ambrosia == nil || *reading.Ambrosia != 0 {
		t.Fatalf("unexpected ambrosia index: %v", reading.Ambrosia)
	}
}

// TestDWDFetchNoMatchingRow verifies that a dataset without a row for the
// requested date yields an all-absent reading, not an error.
func TestDWDFetchNoMatchingRow(t *testing.T) {
	body := "date,Birke,Gräser,Ambrosia\n30.04.2024,2,0,0\n"
	srv := newDatasetStub(t, "001", body)
	defer srv.Close()

	p := NewDWDOpenDataProvider(srv.Client(), srv.URL, "001")
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	reading, err := p.Fetch(context.Background(), weather.Location{}, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reading.Empty() {
		t.Fatalf("expected empty reading, got %+v", reading)
	}
}

// TestDWDFetchFirstMatchWins verifies that with duplicate rows for the same
// date, the first one in file order is used.
func TestDWDFetchFirstMatchWins(t *testing.T) {
	body := "date,Birke,Gräser,Ambrosia\n" +
		"01.05.2024,3,1,0\n" +
		"01.05.2024,0,0,0\n"
	srv := newDatasetStub(t, "042", body)
	defer srv.Close()

	p := NewDWDOpenDataProvider(srv.Client(), srv.URL, "042")
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	reading, err := p.Fetch(context.Background(), weather.Location{}, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Birch == nil || *reading.Birch != 3 {
		t.Fatalf("expected first row's birch index 3, got %v", reading.Birch)
	}
}

// TestDWDFetchLocalizedHeaders verifies that transliterated and English
// column names are matched as well, and that empty cells stay absent.
func TestDWDFetchLocalizedHeaders(t *testing.T) {
	body := "Datum,birch,graeser,Ambrosia\n01/05/2024,2,,1\n"
	srv := newDatasetStub(t, "001", body)
	defer srv.Close()

	p := NewDWDOpenDataProvider(srv.Client(), srv.URL, "001")
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	reading, err := p.Fetch(context.Background(), weather.Location{}, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Birch == nil || *reading.Birch != 2 {
		t.Fatalf("unexpected birch index: %v", reading.Birch)
	}
	if reading.Grasses != nil {
		t.Fatalf("expected grasses to be absent, got %v", reading.Grasses)
	}
	if reading.Ambrosia == nil || *reading.Ambrosia != 1 {
		t.Fatalf("unexpected ambrosia index: %v", reading.Ambrosia)
	}
}

func TestDWDFetchMissingDateColumn(t *testing.T) {
	srv := newDatasetStub(t, "001", "Birke,Gräser,Ambrosia\n3,1,0\n")
	defer srv.Close()

	p := NewDWDOpenDataProvider(srv.Client(), srv.URL, "001")

	if _, err := p.Fetch(context.Background(), weather.Location{}, time.Now()); err == nil {
		t.Fatal("expected error for dataset without a date column")
	}
}
