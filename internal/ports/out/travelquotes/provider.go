package travelquotes

import (
	"context"
	"time"

	"github.com/triphive/triphive-api/internal/domain"
)

// FlightQuery describes a round-trip flight search.
type FlightQuery struct {
	Origin      string // IATA
	Destination string // IATA

	Depart time.Time
	Return time.Time
}

// CarHireQuery describes a car-hire search for a pickup window.
type CarHireQuery struct {
	Location string // IATA of pickup airport

	From time.Time
	To   time.Time
}

// Provider searches priced travel options.
//
// Implementations must return quotes sorted by price ascending. An upstream
// outage is reported as ErrUnavailable so callers can select a fallback.
type Provider interface {
	SearchFlights(ctx context.Context, q FlightQuery) ([]domain.FlightQuote, error)
	SearchCarHire(ctx context.Context, q CarHireQuery) ([]domain.CarHireQuote, error)
}
