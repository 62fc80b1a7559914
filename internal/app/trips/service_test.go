package trips_test

import (
	"context"
	"errors"
	"testing"
	"time"

	memmembershiprepo "github.com/triphive/triphive-api/internal/adapters/memory/membershiprepo"
	memtriprepo "github.com/triphive/triphive-api/internal/adapters/memory/triprepo"
	"github.com/triphive/triphive-api/internal/app/trips"
	"github.com/triphive/triphive-api/internal/domain"
	portmembershiprepo "github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	porttriprepo "github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// seqMinter hands out codes from a fixed sequence.
type seqMinter struct {
	codes []domain.JoinCode
	i     int
}

func (m *seqMinter) GenerateJoinCode(context.Context) (domain.JoinCode, error) {
	if m.i >= len(m.codes) {
		return "", errors.New("minter exhausted")
	}
	c := m.codes[m.i]
	m.i++
	return c, nil
}

func newFixture(codes ...domain.JoinCode) (*trips.Service, *memtriprepo.Repo, *memmembershiprepo.Repo) {
	tripsRepo := memtriprepo.NewRepo()
	memberships := memmembershiprepo.NewRepo()
	svc := trips.NewService(tripsRepo, memberships, &seqMinter{codes: codes}, nil, fixedClock{t: time.Unix(1000, 0).UTC()})
	return svc, tripsRepo, memberships
}

func TestCreateTrip_MintsCodeAndOwnerMembership(t *testing.T) {
	t.Parallel()

	svc, tripsRepo, memberships := newFixture("ABC12")
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })

	desc := "a week in the sun"
	created, err := svc.CreateTrip(context.Background(), "u1", trips.CreateTripInput{Name: "  Summer   Trip ", Description: &desc})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if created.ID != "t1" || created.Name != "Summer Trip" || created.JoinCode != "ABC12" || created.Status != domain.TripStatusPlanning {
		t.Fatalf("created=%+v", created)
	}

	stored, err := tripsRepo.GetByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.OwnerSubject != "u1" || stored.JoinCode != "ABC12" {
		t.Fatalf("stored=%+v", stored)
	}

	m, err := memberships.Get(context.Background(), "t1", "u1")
	if err != nil {
		t.Fatalf("owner membership: %v", err)
	}
	if m.Role != domain.MemberRoleOwner {
		t.Fatalf("role=%s", m.Role)
	}
}

func TestCreateTrip_RetriesOnceOnJoinCodeRace(t *testing.T) {
	t.Parallel()

	svc, tripsRepo, _ := newFixture("ABC12", "XYZ34")
	svc.SetNewTripIDForTest(func() domain.TripID { return "t2" })

	// Another trip already persisted ABC12 after the probe said it was free.
	now := time.Unix(500, 0).UTC()
	if err := tripsRepo.Create(context.Background(), porttriprepo.Trip{
		ID: "t1", Name: "Older", OwnerSubject: "u9", Status: domain.TripStatusPlanning,
		JoinCode: "ABC12", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	created, err := svc.CreateTrip(context.Background(), "u1", trips.CreateTripInput{Name: "Racer"})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if created.JoinCode != "XYZ34" {
		t.Fatalf("joinCode=%s, want XYZ34", created.JoinCode)
	}
}

func TestCreateTrip_EmptyNameRejected(t *testing.T) {
	t.Parallel()

	svc, _, _ := newFixture("ABC12")
	_, err := svc.CreateTrip(context.Background(), "u1", trips.CreateTripInput{Name: "   "})
	var ae *trips.Error
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v", err)
	}
}

func TestGetTrip_NonMemberGets404(t *testing.T) {
	t.Parallel()

	svc, _, _ := newFixture("ABC12")
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })
	if _, err := svc.CreateTrip(context.Background(), "u1", trips.CreateTripInput{Name: "Hidden"}); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	_, err := svc.GetTrip(context.Background(), "u2", "t1")
	var ae *trips.Error
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != "TRIP_NOT_FOUND" {
		t.Fatalf("err=%v", err)
	}
}

func TestListMyTrips_ReturnsRoles(t *testing.T) {
	t.Parallel()

	svc, _, memberships := newFixture("ABC12", "DEF34")
	ids := []domain.TripID{"t1", "t2"}
	svc.SetNewTripIDForTest(func() domain.TripID {
		id := ids[0]
		ids = ids[1:]
		return id
	})

	if _, err := svc.CreateTrip(context.Background(), "u1", trips.CreateTripInput{Name: "Mine"}); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if _, err := svc.CreateTrip(context.Background(), "u2", trips.CreateTripInput{Name: "Theirs"}); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	_ = memberships // u1 is not a member of t2

	mine, err := svc.ListMyTrips(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListMyTrips: %v", err)
	}
	if len(mine) != 1 || mine[0].Trip.ID != "t1" || mine[0].Role != domain.MemberRoleOwner {
		t.Fatalf("mine=%+v", mine)
	}
}

func TestGetTrip_IncludesMembers(t *testing.T) {
	t.Parallel()

	svc, tripsRepo, memberships := newFixture("ABC12")
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })
	if _, err := svc.CreateTrip(context.Background(), "u1", trips.CreateTripInput{Name: "Crew"}); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	_ = tripsRepo

	// Simulate a redeemed join.
	if err := memberships.Insert(context.Background(), portmembershiprepo.Membership{
		TripID:   "t1",
		Subject:  "u2",
		Role:     domain.MemberRoleMember,
		JoinedAt: time.Unix(2000, 0).UTC(),
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	d, err := svc.GetTrip(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if len(d.Members) != 2 {
		t.Fatalf("members=%d, want 2", len(d.Members))
	}
	if d.JoinCode != "ABC12" {
		t.Fatalf("joinCode=%s", d.JoinCode)
	}
}
