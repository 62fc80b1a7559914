package travelapi

import (
	"context"
	"log/slog"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/travelquotes"
)

// Fallback tries a primary provider and falls back to a secondary on any
// error. The secondary is typically the Mock, so search pages keep working
// through upstream outages.
type Fallback struct {
	primary  travelquotes.Provider
	fallback travelquotes.Provider
	log      *slog.Logger
}

func NewFallback(primary, fallback travelquotes.Provider, log *slog.Logger) *Fallback {
	if log == nil {
		log = slog.Default()
	}
	return &Fallback{primary: primary, fallback: fallback, log: log}
}

func (f *Fallback) SearchFlights(ctx context.Context, q travelquotes.FlightQuery) ([]domain.FlightQuote, error) {
	out, err := f.primary.SearchFlights(ctx, q)
	if err == nil {
		return out, nil
	}
	f.log.WarnContext(ctx, "flight search falling back to mock data", "origin", q.Origin, "destination", q.Destination, "error", err)
	return f.fallback.SearchFlights(ctx, q)
}

func (f *Fallback) SearchCarHire(ctx context.Context, q travelquotes.CarHireQuery) ([]domain.CarHireQuote, error) {
	out, err := f.primary.SearchCarHire(ctx, q)
	if err == nil {
		return out, nil
	}
	f.log.WarnContext(ctx, "car hire search falling back to mock data", "location", q.Location, "error", err)
	return f.fallback.SearchCarHire(ctx, q)
}
