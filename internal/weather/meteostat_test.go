package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newMeteostatStub(t *testing.T, stations string, daily string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/stations/nearby":
			fmt.Fprint(w, stations)
		case "/stations/daily":
			fmt.Fprint(w, daily)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestResolveReturnsDailyAggregate(t *testing.T) {
	srv := newMeteostatStub(t,
		`{"data":[{"id":"10637"}]}`,
		`{"data":[{"date":"2024-05-01","tavg":14.2,"rhum":68,"prcp":0.4}]}`,
	)
	defer srv.Close()

	client := NewMeteostatClient(srv.Client(), srv.URL, "")
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	reading, err := client.Resolve(context.Background(), date, Location{Lat: 51.16, Lon: 10.45})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reading.Tavg == nil || *reading.Tavg != 14.2 {
		t.Fatalf("unexpected tavg: %v", reading.Tavg)
	}
	if reading.Rhum == nil || *reading.Rhum != 68 {
		t.Fatalf("unexpected rhum: %v", reading.Rhum)
	}
	if reading.Prcp == nil || *reading.Prcp != 0.4 {
		t.Fatalf("unexpected prcp: %v", reading.Prcp)
	}
}

// TestResolveNoNearbyStation verifies that a coordinate pair with zero
// nearby stations yields an all-absent reading, not an error.
func TestResolveNoNearbyStation(t *testing.T) {
	srv := newMeteostatStub(t, `{"data":[]}`, `{"data":[]}`)
	defer srv.Close()

	client := NewMeteostatClient(srv.Client(), srv.URL, "")

	reading, err := client.Resolve(context.Background(), time.Now(), Location{Lat: 0, Lon: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reading.Empty() {
		t.Fatalf("expected empty reading, got %+v", reading)
	}
}

// TestResolveMissingMetricsStayAbsent verifies that a daily row without
// humidity keeps the field nil instead of zeroing it.
func TestResolveMissingMetricsStayAbsent(t *testing.T) {
	srv := newMeteostatStub(t,
		`{"data":[{"id":"10637"}]}`,
		`{"data":[{"date":"2024-05-01","tavg":14.2,"prcp":null}]}`,
	)
	defer srv.Close()

	client := NewMeteostatClient(srv.Client(), srv.URL, "")
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	reading, err := client.Resolve(context.Background(), date, Location{Lat: 51.16, Lon: 10.45})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Tavg == nil {
		t.Fatal("expected tavg to be present")
	}
	if reading.Rhum != nil || reading.Prcp != nil {
		t.Fatalf("expected rhum and prcp to be absent, got %+v", reading)
	}
}

func TestResolveRejectsInvalidCoordinates(t *testing.T) {
	client := NewMeteostatClient(http.DefaultClient, "http://example.invalid", "")

	if _, err := client.Resolve(context.Background(), time.Now(), Location{Lat: 91, Lon: 0}); err == nil {
		t.Fatal("expected error for out-of-range latitude")
	}
}

func TestParseDate(t *testing.T) {
	iso, err := ParseDate("2024-05-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if !iso.Equal(want) {
		t.Fatalf("expected %v, got %v", want, iso)
	}

	unix, err := ParseDate(fmt.Sprintf("%d", want.Add(13*time.Hour).Unix()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !unix.Equal(want) {
		t.Fatalf("expected timestamp to normalize to %v, got %v", want, unix)
	}

	if _, err := ParseDate("01.05.2024"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
