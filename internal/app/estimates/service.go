package estimates

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	"github.com/triphive/triphive-api/internal/ports/out/preferencerepo"
	"github.com/triphive/triphive-api/internal/ports/out/travelquotes"
	"github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

type Service struct {
	provider    travelquotes.Provider
	trips       triprepo.Repository
	memberships membershiprepo.Repository
	prefs       preferencerepo.Repository
}

func NewService(provider travelquotes.Provider, tripsRepo triprepo.Repository, membershipsRepo membershiprepo.Repository, prefs preferencerepo.Repository) *Service {
	return &Service{
		provider:    provider,
		trips:       tripsRepo,
		memberships: membershipsRepo,
		prefs:       prefs,
	}
}

// Estimate aggregates flight and car-hire quotes into a per-person cost view
// for one candidate destination.
//
// Flights are searched once per distinct origin airport stated in member
// preferences; the min and median are taken over the combined quote set. The
// cheapest car-hire offer covers the whole window and is split evenly across
// members.
func (s *Service) Estimate(ctx context.Context, caller domain.SubjectID, tripID domain.TripID, in EstimateInput) (domain.CostEstimate, error) {
	if caller == "" {
		return domain.CostEstimate{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "authentication required"}
	}
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.CostEstimate{}, tripNotFoundError()
		}
		return domain.CostEstimate{}, err
	}
	if _, err := s.memberships.Get(ctx, tripID, caller); err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return domain.CostEstimate{}, tripNotFoundError()
		}
		return domain.CostEstimate{}, err
	}

	dest := strings.ToUpper(strings.TrimSpace(in.Destination))
	if len(dest) != 3 {
		return domain.CostEstimate{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid destination", Details: map[string]any{"destination": "must be a 3-letter IATA code"}}
	}

	members, err := s.memberships.ListByTrip(ctx, tripID)
	if err != nil {
		return domain.CostEstimate{}, err
	}
	prefs, err := s.prefs.ListByTrip(ctx, tripID)
	if err != nil {
		return domain.CostEstimate{}, err
	}

	origins := distinctOrigins(prefs)
	if len(origins) == 0 {
		return domain.CostEstimate{}, &Error{Status: 422, Code: "NO_ORIGINS", Message: "no member has recorded an origin airport"}
	}

	depart, ret := travelWindow(prefs, in.Depart, in.Return)

	var flights []domain.FlightQuote
	for _, origin := range origins {
		qs, err := s.provider.SearchFlights(ctx, travelquotes.FlightQuery{
			Origin:      origin,
			Destination: dest,
			Depart:      depart,
			Return:      ret,
		})
		if err != nil {
			return domain.CostEstimate{}, mapProviderError(err)
		}
		flights = append(flights, qs...)
	}
	if len(flights) == 0 {
		return domain.CostEstimate{}, &Error{Status: 502, Code: "QUOTES_UNAVAILABLE", Message: "no flight quotes available"}
	}

	cars, err := s.provider.SearchCarHire(ctx, travelquotes.CarHireQuery{
		Location: dest,
		From:     depart,
		To:       ret,
	})
	if err != nil {
		return domain.CostEstimate{}, mapProviderError(err)
	}

	out := domain.CostEstimate{
		Destination: dest,
		MemberCount: len(members),
		Currency:    flights[0].Currency,
		Source:      combinedSource(flights, cars),
	}

	prices := make([]int64, 0, len(flights))
	for _, q := range flights {
		prices = append(prices, q.PriceCents)
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	out.FlightMinCents = prices[0]
	out.FlightMedianCents = median(prices)

	if len(cars) > 0 && len(members) > 0 {
		days := int64(ret.Sub(depart).Hours() / 24)
		if days < 1 {
			days = 1
		}
		cheapest := cars[0].PricePerDayCents
		for _, c := range cars[1:] {
			if c.PricePerDayCents < cheapest {
				cheapest = c.PricePerDayCents
			}
		}
		out.CarHirePerPersonCents = cheapest * days / int64(len(members))
	}

	out.PerPersonTotalCents = out.FlightMedianCents + out.CarHirePerPersonCents
	return out, nil
}

func distinctOrigins(prefs []domain.Preference) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, p := range prefs {
		if p.OriginAirport == nil {
			continue
		}
		o := *p.OriginAirport
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	sort.Strings(out)
	return out
}

// travelWindow picks explicit dates when given, otherwise the intersection of
// member preferences, otherwise a week-long trip two weeks out.
func travelWindow(prefs []domain.Preference, depart, ret time.Time) (time.Time, time.Time) {
	if !depart.IsZero() && !ret.IsZero() && ret.After(depart) {
		return depart.UTC(), ret.UTC()
	}

	var earliest, latest *time.Time
	for _, p := range prefs {
		if p.EarliestDeparture != nil && (earliest == nil || p.EarliestDeparture.After(*earliest)) {
			earliest = p.EarliestDeparture
		}
		if p.LatestReturn != nil && (latest == nil || p.LatestReturn.Before(*latest)) {
			latest = p.LatestReturn
		}
	}
	if earliest != nil && latest != nil && latest.After(*earliest) {
		return earliest.UTC(), latest.UTC()
	}

	d := time.Now().UTC().AddDate(0, 0, 14).Truncate(24 * time.Hour)
	return d, d.AddDate(0, 0, 7)
}

func median(sorted []int64) int64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func combinedSource(flights []domain.FlightQuote, cars []domain.CarHireQuote) domain.QuoteSource {
	for _, q := range flights {
		if q.Source == domain.QuoteSourceMock {
			return domain.QuoteSourceMock
		}
	}
	for _, c := range cars {
		if c.Source == domain.QuoteSourceMock {
			return domain.QuoteSourceMock
		}
	}
	return domain.QuoteSourceLive
}

func mapProviderError(err error) error {
	if errors.Is(err, travelquotes.ErrUnavailable) {
		return &Error{Status: 502, Code: "QUOTES_UNAVAILABLE", Message: "travel quotes are temporarily unavailable"}
	}
	return err
}

func tripNotFoundError() *Error {
	return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
}
