package voting

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/triphive/triphive-api/internal/domain"
	clockport "github.com/triphive/triphive-api/internal/ports/out/clock"
	"github.com/triphive/triphive-api/internal/ports/out/destinationrepo"
	"github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	"github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

type Service struct {
	destinations destinationrepo.Repository
	trips        triprepo.Repository
	memberships  membershiprepo.Repository
	clk          clockport.Clock

	newDestinationID func() domain.DestinationID
}

func NewService(destinations destinationrepo.Repository, tripsRepo triprepo.Repository, membershipsRepo membershiprepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		destinations: destinations,
		trips:        tripsRepo,
		memberships:  membershipsRepo,
		clk:          clk,
		newDestinationID: func() domain.DestinationID {
			return domain.DestinationID(uuid.NewString())
		},
	}
}

// SetNewDestinationIDForTest overrides ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewDestinationIDForTest(fn func() domain.DestinationID) {
	if fn != nil {
		s.newDestinationID = fn
	}
}

func (s *Service) AddDestination(ctx context.Context, caller domain.SubjectID, tripID domain.TripID, in AddDestinationInput) (domain.Destination, error) {
	if err := s.requireMember(ctx, caller, tripID); err != nil {
		return domain.Destination{}, err
	}

	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.Destination{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}
	iata := strings.ToUpper(strings.TrimSpace(in.IATA))
	if len(iata) != 3 {
		return domain.Destination{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid iata", Details: map[string]any{"iata": "must be a 3-letter IATA code"}}
	}

	d := domain.Destination{
		ID:      s.newDestinationID(),
		TripID:  tripID,
		Name:    name,
		Country: domain.NormalizeHumanName(in.Country),
		IATA:    iata,
	}
	if err := s.destinations.Insert(ctx, d); err != nil {
		return domain.Destination{}, err
	}
	return d, nil
}

func (s *Service) ListDestinations(ctx context.Context, caller domain.SubjectID, tripID domain.TripID) ([]domain.Destination, error) {
	if err := s.requireMember(ctx, caller, tripID); err != nil {
		return nil, err
	}
	return s.destinations.ListByTrip(ctx, tripID)
}

// CastVote records the caller's swipe verdict on a destination. Voting twice
// replaces the earlier verdict.
func (s *Service) CastVote(ctx context.Context, caller domain.SubjectID, tripID domain.TripID, destinationID domain.DestinationID, like bool) error {
	if err := s.requireMember(ctx, caller, tripID); err != nil {
		return err
	}
	d, err := s.destinations.GetByID(ctx, destinationID)
	if err != nil {
		if errors.Is(err, destinationrepo.ErrNotFound) {
			return destinationNotFoundError()
		}
		return err
	}
	if d.TripID != tripID {
		return destinationNotFoundError()
	}
	return s.destinations.UpsertVote(ctx, domain.Vote{
		DestinationID: destinationID,
		Subject:       caller,
		Liked:         like,
		UpdatedAt:     s.clk.Now(),
	})
}

// Tally aggregates votes per destination, ordered by approval percentage
// descending (ties by name).
func (s *Service) Tally(ctx context.Context, caller domain.SubjectID, tripID domain.TripID) ([]domain.DestinationTally, error) {
	if err := s.requireMember(ctx, caller, tripID); err != nil {
		return nil, err
	}
	ds, err := s.destinations.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	vs, err := s.destinations.ListVotesByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	likes := make(map[domain.DestinationID]int)
	totals := make(map[domain.DestinationID]int)
	for _, v := range vs {
		totals[v.DestinationID]++
		if v.Liked {
			likes[v.DestinationID]++
		}
	}

	out := make([]domain.DestinationTally, 0, len(ds))
	for _, d := range ds {
		entry := domain.DestinationTally{
			Destination: d,
			Likes:       likes[d.ID],
			Votes:       totals[d.ID],
		}
		if entry.Votes > 0 {
			entry.ApprovalPct = entry.Likes * 100 / entry.Votes
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ApprovalPct != out[j].ApprovalPct {
			return out[i].ApprovalPct > out[j].ApprovalPct
		}
		return out[i].Destination.Name < out[j].Destination.Name
	})
	return out, nil
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

func destinationNotFoundError() *Error {
	return &Error{Status: 404, Code: "DESTINATION_NOT_FOUND", Message: "destination not found"}
}
