package travelapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/triphive/triphive-api/internal/adapters/travelapi"
	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/travelquotes"
)

type downProvider struct{}

func (downProvider) SearchFlights(context.Context, travelquotes.FlightQuery) ([]domain.FlightQuote, error) {
	return nil, errors.New("connection refused")
}

func (downProvider) SearchCarHire(context.Context, travelquotes.CarHireQuery) ([]domain.CarHireQuote, error) {
	return nil, errors.New("connection refused")
}

type upProvider struct{ quotes []domain.FlightQuote }

func (p upProvider) SearchFlights(context.Context, travelquotes.FlightQuery) ([]domain.FlightQuote, error) {
	return p.quotes, nil
}

func (p upProvider) SearchCarHire(context.Context, travelquotes.CarHireQuery) ([]domain.CarHireQuote, error) {
	return nil, nil
}

func TestFallback_UsesPrimaryWhenHealthy(t *testing.T) {
	t.Parallel()

	want := []domain.FlightQuote{{Carrier: "TAP", PriceCents: 1, Source: domain.QuoteSourceLive}}
	f := travelapi.NewFallback(upProvider{quotes: want}, travelapi.NewMock(1), nil)

	out, err := f.SearchFlights(context.Background(), flightQuery())
	if err != nil {
		t.Fatalf("SearchFlights: %v", err)
	}
	if len(out) != 1 || out[0].Carrier != "TAP" {
		t.Fatalf("out=%+v", out)
	}
}

func TestFallback_FallsBackToMockOnError(t *testing.T) {
	t.Parallel()

	f := travelapi.NewFallback(downProvider{}, travelapi.NewMock(1), nil)

	out, err := f.SearchFlights(context.Background(), flightQuery())
	if err != nil {
		t.Fatalf("SearchFlights: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected mock quotes")
	}
	if out[0].Source != domain.QuoteSourceMock {
		t.Fatalf("source=%s", out[0].Source)
	}
}
