package travelapi

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/travelquotes"
)

// carrier base fares in cents for a medium-haul round trip; the mock jitters
// these per search so results look alive without an upstream.
var mockCarriers = []struct {
	code string
	base int64
}{
	{"TAP Air Portugal", 38000},
	{"Iberia", 42500},
	{"Lufthansa", 51000},
	{"British Airways", 56500},
	{"United", 61000},
}

var mockSuppliers = []struct {
	name    string
	vehicle string
	perDay  int64
}{
	{"Hertz", "Compact", 5200},
	{"Sixt", "Estate", 6900},
	{"Europcar", "SUV", 8800},
}

// Mock synthesizes travel quotes from static fixture data. Results are
// deterministic for a given seed, which keeps tests stable; production wiring
// seeds from the clock. It is safe for concurrent use.
type Mock struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMock(seed uint64) *Mock {
	return &Mock{rnd: rand.New(rand.NewPCG(seed, seed<<1|1))}
}

func (m *Mock) SearchFlights(_ context.Context, q travelquotes.FlightQuery) ([]domain.FlightQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	carriers := make([]int, len(mockCarriers))
	for i := range carriers {
		carriers[i] = i
	}
	m.rnd.Shuffle(len(carriers), func(i, j int) {
		carriers[i], carriers[j] = carriers[j], carriers[i]
	})

	// Offer a subset of carriers, at least two.
	n := 2 + m.rnd.IntN(len(carriers)-1)
	out := make([]domain.FlightQuote, 0, n)
	for _, idx := range carriers[:n] {
		c := mockCarriers[idx]
		// Jitter fares by up to ±15%.
		jitter := int64(m.rnd.IntN(31)) - 15
		price := c.base + c.base*jitter/100
		out = append(out, domain.FlightQuote{
			Carrier:     c.code,
			Origin:      q.Origin,
			Destination: q.Destination,
			DepartAt:    q.Depart.UTC().Add(7 * time.Hour),
			ReturnAt:    q.Return.UTC().Add(16 * time.Hour),
			PriceCents:  price,
			Currency:    "USD",
			Source:      domain.QuoteSourceMock,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceCents < out[j].PriceCents })
	return out, nil
}

func (m *Mock) SearchCarHire(_ context.Context, _ travelquotes.CarHireQuery) ([]domain.CarHireQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.CarHireQuote, 0, len(mockSuppliers))
	for _, s := range mockSuppliers {
		jitter := int64(m.rnd.IntN(21)) - 10
		out = append(out, domain.CarHireQuote{
			Supplier:         s.name,
			Vehicle:          s.vehicle,
			PricePerDayCents: s.perDay + s.perDay*jitter/100,
			Currency:         "USD",
			Source:           domain.QuoteSourceMock,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PricePerDayCents < out[j].PricePerDayCents })
	return out, nil
}
