package travelapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/triphive/triphive-api/internal/adapters/travelapi"
	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/travelquotes"
)

func TestMock_FlightsAreSortedSeededAndMarked(t *testing.T) {
	t.Parallel()

	q := flightQuery()

	a, err := travelapi.NewMock(42).SearchFlights(context.Background(), q)
	if err != nil {
		t.Fatalf("SearchFlights: %v", err)
	}
	if len(a) < 2 {
		t.Fatalf("len=%d", len(a))
	}
	for i := range a {
		if a[i].Source != domain.QuoteSourceMock {
			t.Fatalf("source=%s", a[i].Source)
		}
		if a[i].Origin != "SFO" || a[i].Destination != "LIS" {
			t.Fatalf("quote=%+v", a[i])
		}
		if i > 0 && a[i-1].PriceCents > a[i].PriceCents {
			t.Fatalf("not sorted: %d then %d", a[i-1].PriceCents, a[i].PriceCents)
		}
	}

	// Same seed, same quotes.
	b, err := travelapi.NewMock(42).SearchFlights(context.Background(), q)
	if err != nil {
		t.Fatalf("SearchFlights: %v", err)
	}
	if len(a) != len(b) || a[0] != b[0] {
		t.Fatalf("seeded runs differ: %+v vs %+v", a[0], b[0])
	}
}

func TestMock_CarHireCoversAllSuppliers(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	out, err := travelapi.NewMock(7).SearchCarHire(context.Background(), travelquotes.CarHireQuery{
		Location: "LIS", From: from, To: from.AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("SearchCarHire: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len=%d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].PricePerDayCents > out[i].PricePerDayCents {
			t.Fatalf("not sorted")
		}
	}
}
