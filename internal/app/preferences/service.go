package preferences

import (
	"context"
	"errors"
	"strings"

	"github.com/triphive/triphive-api/internal/domain"
	clockport "github.com/triphive/triphive-api/internal/ports/out/clock"
	"github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	"github.com/triphive/triphive-api/internal/ports/out/preferencerepo"
	"github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

type Service struct {
	prefs       preferencerepo.Repository
	trips       triprepo.Repository
	memberships membershiprepo.Repository
	clk         clockport.Clock
}

func NewService(prefs preferencerepo.Repository, tripsRepo triprepo.Repository, membershipsRepo membershiprepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		prefs:       prefs,
		trips:       tripsRepo,
		memberships: membershipsRepo,
		clk:         clk,
	}
}

// SetPreferences upserts the caller's preferences for a trip.
func (s *Service) SetPreferences(ctx context.Context, caller domain.SubjectID, tripID domain.TripID, in SetPreferencesInput) (domain.Preference, error) {
	if err := s.requireMember(ctx, caller, tripID); err != nil {
		return domain.Preference{}, err
	}

	p := domain.Preference{
		TripID:    tripID,
		Subject:   caller,
		UpdatedAt: s.clk.Now(),
	}

	if in.OriginAirport != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.OriginAirport))
		if len(code) != 3 {
			return domain.Preference{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid originAirport", Details: map[string]any{"originAirport": "must be a 3-letter IATA code"}}
		}
		p.OriginAirport = &code
	}
	if in.BudgetCents != nil {
		if *in.BudgetCents < 0 {
			return domain.Preference{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid budgetCents", Details: map[string]any{"budgetCents": "must be >= 0"}}
		}
		v := *in.BudgetCents
		p.BudgetCents = &v
	}
	if in.EarliestDeparture != nil {
		v := in.EarliestDeparture.UTC()
		p.EarliestDeparture = &v
	}
	if in.LatestReturn != nil {
		v := in.LatestReturn.UTC()
		p.LatestReturn = &v
	}
	if p.EarliestDeparture != nil && p.LatestReturn != nil && p.LatestReturn.Before(*p.EarliestDeparture) {
		return domain.Preference{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid date window", Details: map[string]any{"latestReturn": "must be on or after earliestDeparture"}}
	}
	if in.Pace != nil {
		switch *in.Pace {
		case domain.TravelPaceRelaxed, domain.TravelPaceBalanced, domain.TravelPacePacked:
			v := *in.Pace
			p.Pace = &v
		default:
			return domain.Preference{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid pace", Details: map[string]any{"pace": "must be RELAXED, BALANCED or PACKED"}}
		}
	}

	if err := s.prefs.Upsert(ctx, p); err != nil {
		return domain.Preference{}, err
	}
	return p, nil
}

func (s *Service) GetMyPreferences(ctx context.Context, caller domain.SubjectID, tripID domain.TripID) (domain.Preference, error) {
	if err := s.requireMember(ctx, caller, tripID); err != nil {
		return domain.Preference{}, err
	}
	p, err := s.prefs.Get(ctx, tripID, caller)
	if err != nil {
		if errors.Is(err, preferencerepo.ErrNotFound) {
			return domain.Preference{}, &Error{Status: 404, Code: "PREFERENCES_NOT_SET", Message: "no preferences recorded"}
		}
		return domain.Preference{}, err
	}
	return p, nil
}

func (s *Service) ListPreferences(ctx context.Context, caller domain.SubjectID, tripID domain.TripID) ([]domain.Preference, error) {
	if err := s.requireMember(ctx, caller, tripID); err != nil {
		return nil, err
	}
	return s.prefs.ListByTrip(ctx, tripID)
}

func (s *Service) requireMember(ctx context.Context, caller domain.SubjectID, tripID domain.TripID) error {
	if caller == "" {
		return &Error{Status: 401, Code: "UNAUTHORIZED", Message: "authentication required"}
	}
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return tripNotFoundError()
		}
		return err
	}
	if _, err := s.memberships.Get(ctx, tripID, caller); err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return tripNotFoundError()
		}
		return err
	}
	return nil
}

func tripNotFoundError() *Error {
	return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
}
