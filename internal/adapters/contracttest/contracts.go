// Package contracttest holds behavioral suites run against every
// implementation of the persistence ports, so the in-memory and Postgres
// adapters stay interchangeable.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/triphive/triphive-api/internal/domain"
	destinationrepoport "github.com/triphive/triphive-api/internal/ports/out/destinationrepo"
	membershiprepoport "github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	preferencerepoport "github.com/triphive/triphive-api/internal/ports/out/preferencerepo"
	triprepoport "github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

type CleanupFunc = func()

type TripRepoFactory func(t *testing.T) (triprepoport.Repository, CleanupFunc)
type MembershipRepoFactory func(t *testing.T) (membershiprepoport.Repository, CleanupFunc)
type PreferenceRepoFactory func(t *testing.T) (preferencerepoport.Repository, CleanupFunc)
type DestinationRepoFactory func(t *testing.T) (destinationrepoport.Repository, CleanupFunc)

func seedTrip(t *testing.T, trips triprepoport.Repository, code domain.JoinCode) triprepoport.Trip {
	t.Helper()
	now := time.Unix(1000, 0).UTC()
	trip := triprepoport.Trip{
		ID:           domain.TripID(uuid.NewString()),
		Name:         "Lisbon long weekend",
		OwnerSubject: domain.SubjectID("sub-owner"),
		Status:       domain.TripStatusPlanning,
		JoinCode:     code,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := trips.Create(context.Background(), trip); err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return trip
}

func RunTripRepo(t *testing.T, newTrips TripRepoFactory) {
	t.Helper()
	ctx := context.Background()

	trips, cleanup := newTrips(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	trip := seedTrip(t, trips, "ABC12")

	got, err := trips.GetByID(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != trip.Name || got.JoinCode != "ABC12" || got.Status != domain.TripStatusPlanning {
		t.Fatalf("unexpected trip: %+v", got)
	}

	got, err = trips.GetByJoinCode(ctx, "ABC12")
	if err != nil {
		t.Fatalf("GetByJoinCode: %v", err)
	}
	if got.ID != trip.ID {
		t.Fatalf("GetByJoinCode resolved %q, want %q", got.ID, trip.ID)
	}

	if _, err := trips.GetByJoinCode(ctx, "ZZZ99"); !errors.Is(err, triprepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown code, got %v", err)
	}

	// Join codes are unique across trips.
	dup := trip
	dup.ID = domain.TripID(uuid.NewString())
	if err := trips.Create(ctx, dup); !errors.Is(err, triprepoport.ErrJoinCodeTaken) {
		t.Fatalf("expected ErrJoinCodeTaken, got %v", err)
	}

	// Duplicate trip id.
	dup = trip
	dup.JoinCode = "XYZ34"
	if err := trips.Create(ctx, dup); !errors.Is(err, triprepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Save updates mutable fields; the join code stays put.
	upd := trip
	upd.Name = "Lisbon in May"
	upd.Status = domain.TripStatusBooked
	upd.UpdatedAt = trip.UpdatedAt.Add(time.Hour)
	if err := trips.Save(ctx, upd); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = trips.GetByID(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetByID after save: %v", err)
	}
	if got.Name != "Lisbon in May" || got.Status != domain.TripStatusBooked || got.JoinCode != "ABC12" {
		t.Fatalf("unexpected trip after save: %+v", got)
	}

	missing := upd
	missing.ID = domain.TripID(uuid.NewString())
	if err := trips.Save(ctx, missing); !errors.Is(err, triprepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound saving unknown trip, got %v", err)
	}
}

func RunMembershipRepo(t *testing.T, newTrips TripRepoFactory, newMemberships MembershipRepoFactory) {
	t.Helper()
	ctx := context.Background()

	trips, cleanup := newTrips(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	memberships, cleanup := newMemberships(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	trip := seedTrip(t, trips, "DEF12")
	base := time.Unix(2000, 0).UTC()

	owner := membershiprepoport.Membership{
		TripID:   trip.ID,
		Subject:  "sub-owner",
		Role:     domain.MemberRoleOwner,
		JoinedAt: base,
	}
	if err := memberships.Insert(ctx, owner); err != nil {
		t.Fatalf("Insert owner: %v", err)
	}
	joiner := membershiprepoport.Membership{
		TripID:   trip.ID,
		Subject:  "sub-joiner",
		Role:     domain.MemberRoleMember,
		JoinedAt: base.Add(time.Minute),
	}
	if err := memberships.Insert(ctx, joiner); err != nil {
		t.Fatalf("Insert joiner: %v", err)
	}

	// (trip, subject) uniqueness is the backstop for concurrent redemptions.
	if err := memberships.Insert(ctx, joiner); !errors.Is(err, membershiprepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := memberships.Get(ctx, trip.ID, "sub-joiner")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Role != domain.MemberRoleMember {
		t.Fatalf("unexpected role %q", got.Role)
	}
	if _, err := memberships.Get(ctx, trip.ID, "sub-stranger"); !errors.Is(err, membershiprepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	byTrip, err := memberships.ListByTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	if len(byTrip) != 2 || byTrip[0].Subject != "sub-owner" || byTrip[1].Subject != "sub-joiner" {
		t.Fatalf("unexpected ListByTrip order: %+v", byTrip)
	}

	bySubject, err := memberships.ListBySubject(ctx, "sub-joiner")
	if err != nil {
		t.Fatalf("ListBySubject: %v", err)
	}
	if len(bySubject) != 1 || bySubject[0].TripID != trip.ID {
		t.Fatalf("unexpected ListBySubject: %+v", bySubject)
	}
}

func RunPreferenceRepo(t *testing.T, newTrips TripRepoFactory, newPreferences PreferenceRepoFactory) {
	t.Helper()
	ctx := context.Background()

	trips, cleanup := newTrips(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	preferences, cleanup := newPreferences(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	trip := seedTrip(t, trips, "GHJ12")
	now := time.Unix(3000, 0).UTC()

	origin := "SFO"
	budget := int64(150_000)
	pace := domain.TravelPaceBalanced
	pref := domain.Preference{
		TripID:        trip.ID,
		Subject:       "sub-a",
		OriginAirport: &origin,
		BudgetCents:   &budget,
		Pace:          &pace,
		UpdatedAt:     now,
	}
	if err := preferences.Upsert(ctx, pref); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := preferences.Get(ctx, trip.ID, "sub-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OriginAirport == nil || *got.OriginAirport != "SFO" || got.BudgetCents == nil || *got.BudgetCents != 150_000 {
		t.Fatalf("unexpected preference: %+v", got)
	}
	if got.Pace == nil || *got.Pace != domain.TravelPaceBalanced {
		t.Fatalf("unexpected pace: %+v", got.Pace)
	}

	// Last write wins, including clearing fields.
	pref.OriginAirport = nil
	newBudget := int64(90_000)
	pref.BudgetCents = &newBudget
	pref.UpdatedAt = now.Add(time.Hour)
	if err := preferences.Upsert(ctx, pref); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}
	got, err = preferences.Get(ctx, trip.ID, "sub-a")
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if got.OriginAirport != nil || got.BudgetCents == nil || *got.BudgetCents != 90_000 {
		t.Fatalf("overwrite not applied: %+v", got)
	}

	if _, err := preferences.Get(ctx, trip.ID, "sub-missing"); !errors.Is(err, preferencerepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	other := "LHR"
	if err := preferences.Upsert(ctx, domain.Preference{
		TripID:        trip.ID,
		Subject:       "sub-b",
		OriginAirport: &other,
		UpdatedAt:     now,
	}); err != nil {
		t.Fatalf("Upsert sub-b: %v", err)
	}
	list, err := preferences.ListByTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	if len(list) != 2 || list[0].Subject != "sub-a" || list[1].Subject != "sub-b" {
		t.Fatalf("unexpected ListByTrip order: %+v", list)
	}
}

func RunDestinationRepo(t *testing.T, newTrips TripRepoFactory, newDestinations DestinationRepoFactory) {
	t.Helper()
	ctx := context.Background()

	trips, cleanup := newTrips(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	destinations, cleanup := newDestinations(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	trip := seedTrip(t, trips, "KLM12")
	other := seedTrip(t, trips, "KLM34")
	now := time.Unix(4000, 0).UTC()

	porto := domain.Destination{
		ID:      domain.DestinationID(uuid.NewString()),
		TripID:  trip.ID,
		Name:    "Porto",
		Country: "Portugal",
		IATA:    "OPO",
	}
	athens := domain.Destination{
		ID:      domain.DestinationID(uuid.NewString()),
		TripID:  trip.ID,
		Name:    "Athens",
		Country: "Greece",
		IATA:    "ATH",
	}
	elsewhere := domain.Destination{
		ID:      domain.DestinationID(uuid.NewString()),
		TripID:  other.ID,
		Name:    "Oslo",
		Country: "Norway",
		IATA:    "OSL",
	}
	for _, d := range []domain.Destination{porto, athens, elsewhere} {
		if err := destinations.Insert(ctx, d); err != nil {
			t.Fatalf("Insert %s: %v", d.Name, err)
		}
	}
	if err := destinations.Insert(ctx, porto); !errors.Is(err, destinationrepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := destinations.GetByID(ctx, porto.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IATA != "OPO" || got.TripID != trip.ID {
		t.Fatalf("unexpected destination: %+v", got)
	}
	if _, err := destinations.GetByID(ctx, domain.DestinationID(uuid.NewString())); !errors.Is(err, destinationrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := destinations.ListByTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Athens" || list[1].Name != "Porto" {
		t.Fatalf("unexpected ListByTrip order: %+v", list)
	}

	// Votes: last write wins, scoped to the destination's trip.
	if err := destinations.UpsertVote(ctx, domain.Vote{
		DestinationID: porto.ID, Subject: "sub-a", Liked: true, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("UpsertVote: %v", err)
	}
	if err := destinations.UpsertVote(ctx, domain.Vote{
		DestinationID: porto.ID, Subject: "sub-a", Liked: false, UpdatedAt: now.Add(time.Minute),
	}); err != nil {
		t.Fatalf("UpsertVote overwrite: %v", err)
	}
	if err := destinations.UpsertVote(ctx, domain.Vote{
		DestinationID: elsewhere.ID, Subject: "sub-a", Liked: true, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("UpsertVote other trip: %v", err)
	}

	votes, err := destinations.ListVotesByTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListVotesByTrip: %v", err)
	}
	if len(votes) != 1 || votes[0].DestinationID != porto.ID || votes[0].Liked {
		t.Fatalf("unexpected votes: %+v", votes)
	}
}
