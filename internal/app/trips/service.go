package trips

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/triphive/triphive-api/internal/domain"
	clockport "github.com/triphive/triphive-api/internal/ports/out/clock"
	"github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	"github.com/triphive/triphive-api/internal/ports/out/triprepo"
	"github.com/triphive/triphive-api/internal/ports/out/viewcache"
)

// CodeMinter mints unique join codes. Implemented by the joincode service.
type CodeMinter interface {
	GenerateJoinCode(ctx context.Context) (domain.JoinCode, error)
}

type Service struct {
	trips       triprepo.Repository
	memberships membershiprepo.Repository
	codes       CodeMinter
	cache       viewcache.Invalidator
	clk         clockport.Clock

	newTripID func() domain.TripID
}

func NewService(tripsRepo triprepo.Repository, membershipsRepo membershiprepo.Repository, codes CodeMinter, cache viewcache.Invalidator, clk clockport.Clock) *Service {
	return &Service{
		trips:       tripsRepo,
		memberships: membershipsRepo,
		codes:       codes,
		cache:       cache,
		clk:         clk,
		newTripID: func() domain.TripID {
			return domain.TripID(uuid.NewString())
		},
	}
}

// SetNewTripIDForTest overrides trip ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewTripIDForTest(fn func() domain.TripID) {
	if fn != nil {
		s.newTripID = fn
	}
}

// CreateTrip creates a trip owned by the caller, mints its join code, and
// records the owner membership.
//
// When the trip insert loses the narrow race between code probe and write
// (ErrJoinCodeTaken), a fresh code is minted and the insert retried once.
func (s *Service) CreateTrip(ctx context.Context, caller domain.SubjectID, in CreateTripInput) (TripCreated, error) {
	if caller == "" {
		return TripCreated{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "authentication required"}
	}

	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return TripCreated{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}

	now := s.clk.Now()
	id := s.newTripID()

	var created triprepo.Trip
	for attempt := 0; ; attempt++ {
		code, err := s.codes.GenerateJoinCode(ctx)
		if err != nil {
			return TripCreated{}, err
		}

		created = triprepo.Trip{
			ID:           id,
			Name:         name,
			Description:  cloneStringPtr(in.Description),
			OwnerSubject: caller,
			Status:       domain.TripStatusPlanning,
			JoinCode:     code,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = s.trips.Create(ctx, created)
		if err == nil {
			break
		}
		if errors.Is(err, triprepo.ErrJoinCodeTaken) && attempt == 0 {
			continue
		}
		if errors.Is(err, triprepo.ErrJoinCodeTaken) {
			return TripCreated{}, &Error{Status: 409, Code: "JOIN_CODE_CONFLICT", Message: "could not reserve a unique join code"}
		}
		if errors.Is(err, triprepo.ErrAlreadyExists) {
			// Extremely unlikely (UUID collision); treat as conflict.
			return TripCreated{}, &Error{Status: 409, Code: "TRIP_ID_CONFLICT", Message: "trip id conflict"}
		}
		return TripCreated{}, err
	}

	if err := s.memberships.Insert(ctx, membershiprepo.Membership{
		TripID:   id,
		Subject:  caller,
		Role:     domain.MemberRoleOwner,
		JoinedAt: now,
	}); err != nil && !errors.Is(err, membershiprepo.ErrAlreadyExists) {
		return TripCreated{}, err
	}

	if s.cache != nil {
		s.cache.InvalidateTrips(ctx, caller)
	}

	return TripCreated{
		ID:       id,
		Name:     name,
		Status:   domain.TripStatusPlanning,
		JoinCode: created.JoinCode,
	}, nil
}

func (s *Service) ListMyTrips(ctx context.Context, caller domain.SubjectID) ([]MyTrip, error) {
	if caller == "" {
		return nil, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "authentication required"}
	}
	ms, err := s.memberships.ListBySubject(ctx, caller)
	if err != nil {
		return nil, err
	}
	out := make([]MyTrip, 0, len(ms))
	for _, m := range ms {
		t, err := s.trips.GetByID(ctx, m.TripID)
		if err != nil {
			if errors.Is(err, triprepo.ErrNotFound) {
				continue // membership outlived its trip; skip
			}
			return nil, err
		}
		out = append(out, MyTrip{Trip: toDomain(t), Role: m.Role})
	}
	return out, nil
}

// GetTrip returns trip details for members. Non-members get 404 rather than
// 403 so join codes stay the only way to discover a trip.
func (s *Service) GetTrip(ctx context.Context, caller domain.SubjectID, tripID domain.TripID) (domain.TripDetails, error) {
	t, err := s.loadMemberTrip(ctx, caller, tripID)
	if err != nil {
		return domain.TripDetails{}, err
	}
	ms, err := s.memberships.ListByTrip(ctx, tripID)
	if err != nil {
		return domain.TripDetails{}, err
	}
	d := domain.TripDetails{Trip: toDomain(t), Members: make([]domain.Membership, 0, len(ms))}
	for _, m := range ms {
		d.Members = append(d.Members, domain.Membership{
			TripID:   m.TripID,
			Subject:  m.Subject,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return d, nil
}

func (s *Service) ListMembers(ctx context.Context, caller domain.SubjectID, tripID domain.TripID) ([]domain.Membership, error) {
	if _, err := s.loadMemberTrip(ctx, caller, tripID); err != nil {
		return nil, err
	}
	ms, err := s.memberships.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Membership, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.Membership{
			TripID:   m.TripID,
			Subject:  m.Subject,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return out, nil
}

// loadMemberTrip resolves a trip and verifies the caller's membership.
func (s *Service) loadMemberTrip(ctx context.Context, caller domain.SubjectID, tripID domain.TripID) (triprepo.Trip, error) {
	if caller == "" {
		return triprepo.Trip{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "authentication required"}
	}
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return triprepo.Trip{}, notFoundError()
		}
		return triprepo.Trip{}, err
	}
	if _, err := s.memberships.Get(ctx, tripID, caller); err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return triprepo.Trip{}, notFoundError()
		}
		return triprepo.Trip{}, err
	}
	return t, nil
}

func notFoundError() *Error {
	return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
}

func toDomain(t triprepo.Trip) domain.Trip {
	return domain.Trip{
		ID:           t.ID,
		Name:         t.Name,
		Description:  cloneStringPtr(t.Description),
		OwnerSubject: t.OwnerSubject,
		Status:       t.Status,
		JoinCode:     t.JoinCode,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
