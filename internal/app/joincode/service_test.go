package joincode_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	memmembershiprepo "github.com/triphive/triphive-api/internal/adapters/memory/membershiprepo"
	memtriprepo "github.com/triphive/triphive-api/internal/adapters/memory/triprepo"
	memviewcache "github.com/triphive/triphive-api/internal/adapters/memory/viewcache"
	"github.com/triphive/triphive-api/internal/app/joincode"
	"github.com/triphive/triphive-api/internal/domain"
	portmembershiprepo "github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	porttriprepo "github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newFixture(t *testing.T) (*joincode.Service, *memtriprepo.Repo, *memmembershiprepo.Repo, *memviewcache.Recorder) {
	t.Helper()
	trips := memtriprepo.NewRepo()
	memberships := memmembershiprepo.NewRepo()
	cache := memviewcache.NewRecorder()
	svc := joincode.NewService(trips, memberships, cache, fixedClock{t: time.Unix(1000, 0).UTC()}, nil)
	return svc, trips, memberships, cache
}

func seedTrip(t *testing.T, trips *memtriprepo.Repo, id domain.TripID, name string, code domain.JoinCode) {
	t.Helper()
	now := time.Unix(500, 0).UTC()
	err := trips.Create(context.Background(), porttriprepo.Trip{
		ID:           id,
		Name:         name,
		OwnerSubject: "owner-" + domain.SubjectID(id),
		Status:       domain.TripStatusPlanning,
		JoinCode:     code,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
}

var codePattern = regexp.MustCompile(`^[A-HJ-NP-Z]{3}[1-9]{2}$`)

func TestGenerateJoinCode_MatchesPattern(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newFixture(t)
	for i := 0; i < 200; i++ {
		code, err := svc.GenerateJoinCode(context.Background())
		if err != nil {
			t.Fatalf("GenerateJoinCode: %v", err)
		}
		if !codePattern.MatchString(string(code)) {
			t.Fatalf("code %q does not match %s", code, codePattern)
		}
	}
}

func TestGenerateJoinCode_SkipsCollisions(t *testing.T) {
	t.Parallel()

	svc, trips, _, _ := newFixture(t)

	// With intn pinned to zero the first candidate is always AAA11. Claim it
	// and serve a second sequence for the retry.
	seedTrip(t, trips, "t1", "Lisbon", "AAA11")

	seq := []int{
		0, 0, 0, 0, 0, // AAA11: collides
		1, 1, 1, 1, 1, // BBB22: free
	}
	i := 0
	svc.SetRandForTest(func(n int) int {
		v := seq[i%len(seq)]
		i++
		return v % n
	})

	code, err := svc.GenerateJoinCode(context.Background())
	if err != nil {
		t.Fatalf("GenerateJoinCode: %v", err)
	}
	if code != "BBB22" {
		t.Fatalf("code=%s, want BBB22", code)
	}
}

func TestGenerateJoinCode_ExhaustsAfterTenAttempts(t *testing.T) {
	t.Parallel()

	svc, trips, _, _ := newFixture(t)
	seedTrip(t, trips, "t1", "Lisbon", "AAA11")

	calls := 0
	svc.SetRandForTest(func(n int) int {
		calls++
		return 0 // every candidate is AAA11
	})

	_, err := svc.GenerateJoinCode(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	var ae *joincode.Error
	if !errors.As(err, &ae) || ae.Code != "JOIN_CODE_EXHAUSTED" {
		t.Fatalf("err=%v", err)
	}
	// 5 draws per candidate, 10 candidates, not an 11th.
	if calls != 50 {
		t.Fatalf("rand calls=%d, want 50", calls)
	}
}

func TestRedeem_JoinsAndInvalidatesViewCache(t *testing.T) {
	t.Parallel()

	svc, trips, memberships, cache := newFixture(t)
	seedTrip(t, trips, "t1", "Lisbon", "ABC12")

	out, err := svc.Redeem(context.Background(), "u1", "ABC12")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if !out.Joined || out.AlreadyMember {
		t.Fatalf("out=%+v", out)
	}
	if out.TripID != "t1" || out.TripName != "Lisbon" {
		t.Fatalf("out=%+v", out)
	}

	m, err := memberships.Get(context.Background(), "t1", "u1")
	if err != nil {
		t.Fatalf("Get membership: %v", err)
	}
	if m.Role != domain.MemberRoleMember {
		t.Fatalf("role=%s", m.Role)
	}
	if got := cache.Invalidations("u1"); got != 1 {
		t.Fatalf("invalidations=%d, want 1", got)
	}
}

func TestRedeem_IsCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc, trips, _, _ := newFixture(t)
	seedTrip(t, trips, "t1", "Lisbon", "ABC12")

	out, err := svc.Redeem(context.Background(), "u1", "  abc12 ")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if !out.Joined {
		t.Fatalf("out=%+v", out)
	}
}

func TestRedeem_AlreadyMemberIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, trips, memberships, cache := newFixture(t)
	seedTrip(t, trips, "t1", "Lisbon", "ABC12")

	if _, err := svc.Redeem(context.Background(), "u1", "ABC12"); err != nil {
		t.Fatalf("first Redeem: %v", err)
	}
	out, err := svc.Redeem(context.Background(), "u1", "ABC12")
	if err != nil {
		t.Fatalf("second Redeem: %v", err)
	}
	if !out.AlreadyMember || out.Joined {
		t.Fatalf("out=%+v", out)
	}

	ms, err := memberships.ListByTrip(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	if len(ms) != 1 {
		t.Fatalf("memberships=%d, want 1", len(ms))
	}
	// Only the insert that happened signals the view cache.
	if got := cache.Invalidations("u1"); got != 1 {
		t.Fatalf("invalidations=%d, want 1", got)
	}
}

func TestRedeem_InsertRaceReportsAlreadyMember(t *testing.T) {
	t.Parallel()

	trips := memtriprepo.NewRepo()
	memberships := &racingMemberships{inner: memmembershiprepo.NewRepo()}
	svc := joincode.NewService(trips, memberships, nil, fixedClock{t: time.Unix(1000, 0).UTC()}, nil)
	seedTrip(t, trips, "t1", "Lisbon", "ABC12")

	out, err := svc.Redeem(context.Background(), "u1", "ABC12")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if !out.AlreadyMember || out.Joined {
		t.Fatalf("out=%+v", out)
	}
}

func TestRedeem_InvalidCode(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newFixture(t)

	_, err := svc.Redeem(context.Background(), "u1", "ZZZ99")
	var ae *joincode.Error
	if !errors.As(err, &ae) || ae.Code != "INVALID_JOIN_CODE" || ae.Status != 404 {
		t.Fatalf("err=%v", err)
	}
}

func TestRedeem_UnauthenticatedShortCircuits(t *testing.T) {
	t.Parallel()

	trips := memtriprepo.NewRepo()
	memberships := &failingMemberships{}
	svc := joincode.NewService(trips, memberships, nil, fixedClock{t: time.Unix(1000, 0).UTC()}, nil)
	seedTrip(t, trips, "t1", "Lisbon", "ABC12")

	_, err := svc.Redeem(context.Background(), "", "ABC12")
	var ae *joincode.Error
	if !errors.As(err, &ae) || ae.Status != 401 {
		t.Fatalf("err=%v", err)
	}
	if memberships.calls != 0 {
		t.Fatalf("membership store reached %d times before auth", memberships.calls)
	}
}

func TestRedeem_InsertFailureMapsToJoinFailed(t *testing.T) {
	t.Parallel()

	trips := memtriprepo.NewRepo()
	memberships := &failingMemberships{}
	svc := joincode.NewService(trips, memberships, nil, fixedClock{t: time.Unix(1000, 0).UTC()}, nil)
	seedTrip(t, trips, "t1", "Lisbon", "ABC12")

	_, err := svc.Redeem(context.Background(), "u1", "ABC12")
	var ae *joincode.Error
	if !errors.As(err, &ae) || ae.Code != "JOIN_FAILED" || ae.Status != 502 {
		t.Fatalf("err=%v", err)
	}
}

// racingMemberships reports no membership on Get but a duplicate on Insert,
// simulating a concurrent redemption winning between the check and the write.
type racingMemberships struct {
	inner *memmembershiprepo.Repo
}

func (r *racingMemberships) Insert(context.Context, portmembershiprepo.Membership) error {
	return portmembershiprepo.ErrAlreadyExists
}

func (r *racingMemberships) Get(ctx context.Context, tripID domain.TripID, subject domain.SubjectID) (portmembershiprepo.Membership, error) {
	return r.inner.Get(ctx, tripID, subject)
}

func (r *racingMemberships) ListByTrip(ctx context.Context, tripID domain.TripID) ([]portmembershiprepo.Membership, error) {
	return r.inner.ListByTrip(ctx, tripID)
}

func (r *racingMemberships) ListBySubject(ctx context.Context, subject domain.SubjectID) ([]portmembershiprepo.Membership, error) {
	return r.inner.ListBySubject(ctx, subject)
}

// failingMemberships counts calls; Get reports not-found and Insert fails.
type failingMemberships struct {
	calls int
}

func (f *failingMemberships) Insert(context.Context, portmembershiprepo.Membership) error {
	f.calls++
	return errors.New("directory write refused")
}

func (f *failingMemberships) Get(context.Context, domain.TripID, domain.SubjectID) (portmembershiprepo.Membership, error) {
	f.calls++
	return portmembershiprepo.Membership{}, portmembershiprepo.ErrNotFound
}

func (f *failingMemberships) ListByTrip(context.Context, domain.TripID) ([]portmembershiprepo.Membership, error) {
	f.calls++
	return nil, nil
}

func (f *failingMemberships) ListBySubject(context.Context, domain.SubjectID) ([]portmembershiprepo.Membership, error) {
	f.calls++
	return nil, nil
}
