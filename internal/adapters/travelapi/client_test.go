package travelapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/triphive/triphive-api/internal/adapters/travelapi"
	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/travelquotes"
)

func flightQuery() travelquotes.FlightQuery {
	depart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return travelquotes.FlightQuery{
		Origin:      "SFO",
		Destination: "LIS",
		Depart:      depart,
		Return:      depart.AddDate(0, 0, 7),
	}
}

func TestClient_SearchFlights_ParsesAndSortsByPrice(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/flights" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if got := r.URL.Query().Get("origin"); got != "SFO" {
			t.Errorf("origin=%s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k-test" {
			t.Errorf("auth=%q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"carrier":"Iberia","origin":"SFO","destination":"LIS","departAt":"2026-09-01T07:00:00Z","returnAt":"2026-09-08T16:00:00Z","priceCents":45000,"currency":"USD"},
			{"carrier":"TAP","origin":"SFO","destination":"LIS","departAt":"2026-09-01T09:00:00Z","returnAt":"2026-09-08T18:00:00Z","priceCents":38000,"currency":"USD"}
		]`))
	}))
	defer srv.Close()

	c := travelapi.NewClient(srv.URL, "k-test", travelapi.ClientOptions{})
	out, err := c.SearchFlights(context.Background(), flightQuery())
	if err != nil {
		t.Fatalf("SearchFlights: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len=%d", len(out))
	}
	if out[0].Carrier != "TAP" || out[0].PriceCents != 38000 {
		t.Fatalf("out[0]=%+v", out[0])
	}
	if out[0].Source != domain.QuoteSourceLive {
		t.Fatalf("source=%s", out[0].Source)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := travelapi.NewClient(srv.URL, "", travelapi.ClientOptions{
		MaxRetries:    2,
		RetryBaseWait: time.Millisecond,
	})
	if _, err := c.SearchFlights(context.Background(), flightQuery()); err != nil {
		t.Fatalf("SearchFlights: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls=%d, want 3", got)
	}
}

func TestClient_ExhaustedRetriesReportUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := travelapi.NewClient(srv.URL, "", travelapi.ClientOptions{
		MaxRetries:    1,
		RetryBaseWait: time.Millisecond,
	})
	_, err := c.SearchFlights(context.Background(), flightQuery())
	if !errors.Is(err, travelquotes.ErrUnavailable) {
		t.Fatalf("err=%v", err)
	}
}

func TestClient_ClientErrorDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := travelapi.NewClient(srv.URL, "bad-key", travelapi.ClientOptions{
		MaxRetries:    3,
		RetryBaseWait: time.Millisecond,
	})
	_, err := c.SearchFlights(context.Background(), flightQuery())
	if !errors.Is(err, travelquotes.ErrUnavailable) {
		t.Fatalf("err=%v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls=%d, want 1", got)
	}
}
