package domain

import "time"

// QuoteSource says where a travel quote came from.
type QuoteSource string

const (
	QuoteSourceLive QuoteSource = "LIVE"
	QuoteSourceMock QuoteSource = "MOCK"
)

// FlightQuote is one priced flight option returned by a travel provider.
type FlightQuote struct {
	Carrier     string
	Origin      string // IATA
	Destination string // IATA

	DepartAt time.Time
	ReturnAt time.Time

	PriceCents int64
	Currency   string

	Source QuoteSource
}

// CarHireQuote is one priced car-hire option returned by a travel provider.
type CarHireQuote struct {
	Supplier string
	Vehicle  string

	PricePerDayCents int64
	Currency         string

	Source QuoteSource
}

// CostEstimate is the aggregated per-person cost view for a destination.
type CostEstimate struct {
	Destination string // IATA
	MemberCount int

	FlightMinCents    int64
	FlightMedianCents int64

	// CarHirePerPersonCents is the cheapest car-hire offer for the whole
	// window, split evenly across members.
	CarHirePerPersonCents int64

	PerPersonTotalCents int64
	Currency            string

	Source QuoteSource
}
