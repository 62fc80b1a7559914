package joincode

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/triphive/triphive-api/internal/domain"
	clockport "github.com/triphive/triphive-api/internal/ports/out/clock"
	"github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	"github.com/triphive/triphive-api/internal/ports/out/triprepo"
	"github.com/triphive/triphive-api/internal/ports/out/viewcache"
)

const (
	// codeLetters excludes I and O; codeDigits excludes 0. The remaining
	// characters are unambiguous when read aloud or scanned from a QR code.
	codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	codeDigits  = "123456789"

	codeLetterCount = 3
	codeDigitCount  = 2

	// maxMintAttempts bounds collision retries during generation.
	maxMintAttempts = 10
)

type Service struct {
	trips       triprepo.Repository
	memberships membershiprepo.Repository
	cache       viewcache.Invalidator
	clk         clockport.Clock
	log         *slog.Logger

	intn func(n int) int
}

func NewService(trips triprepo.Repository, memberships membershiprepo.Repository, cache viewcache.Invalidator, clk clockport.Clock, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		trips:       trips,
		memberships: memberships,
		cache:       cache,
		clk:         clk,
		log:         log,
		intn:        rand.IntN,
	}
}

// SetRandForTest overrides the randomness source so tests can force
// collisions deterministically. It should not be used in production code.
func (s *Service) SetRandForTest(intn func(n int) int) {
	if intn != nil {
		s.intn = intn
	}
}

// GenerateJoinCode mints a join code that no existing trip holds.
//
// Each candidate is three letters followed by two digits, drawn uniformly and
// independently. Candidates are probed against the trip store; after
// maxMintAttempts consecutive collisions the call gives up. Generation only
// reads: the caller persists the code on the trip record, and the store's
// uniqueness constraint on join codes backstops the check-then-write gap.
func (s *Service) GenerateJoinCode(ctx context.Context) (domain.JoinCode, error) {
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		code := s.randomCode()

		_, err := s.trips.GetByJoinCode(ctx, code)
		if errors.Is(err, triprepo.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			s.log.ErrorContext(ctx, "join code probe failed", "error", err)
			return "", &Error{Status: 500, Code: "UNEXPECTED", Message: "could not generate a join code"}
		}
		// Candidate is taken; try a fresh one.
	}
	return "", &Error{
		Status:  409,
		Code:    "JOIN_CODE_EXHAUSTED",
		Message: "could not generate a unique join code",
	}
}

func (s *Service) randomCode() domain.JoinCode {
	buf := make([]byte, 0, codeLetterCount+codeDigitCount)
	for i := 0; i < codeLetterCount; i++ {
		buf = append(buf, codeLetters[s.intn(len(codeLetters))])
	}
	for i := 0; i < codeDigitCount; i++ {
		buf = append(buf, codeDigits[s.intn(len(codeDigits))])
	}
	return domain.JoinCode(buf)
}

// Redeem joins the caller to the trip owning the submitted code.
//
// The flow is check-auth, resolve trip, check membership, insert. Redemption
// is idempotent: an existing membership (including one inserted by a
// concurrent redemption, surfaced as ErrAlreadyExists from the store) yields
// an AlreadyMember result rather than an error.
func (s *Service) Redeem(ctx context.Context, caller domain.SubjectID, code string) (Redemption, error) {
	if caller == "" {
		return Redemption{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "authentication required"}
	}

	normalized := domain.NormalizeJoinCode(code)
	if normalized == "" {
		return Redemption{}, invalidCodeError()
	}

	t, err := s.trips.GetByJoinCode(ctx, normalized)
	if err != nil {
		if !errors.Is(err, triprepo.ErrNotFound) {
			// A lookup fault is indistinguishable from "no such code" to the
			// user; log the cause and report the code as invalid.
			s.log.ErrorContext(ctx, "join code lookup failed", "error", err)
		}
		return Redemption{}, invalidCodeError()
	}

	if _, err := s.memberships.Get(ctx, t.ID, caller); err == nil {
		return Redemption{TripID: t.ID, TripName: t.Name, AlreadyMember: true}, nil
	} else if !errors.Is(err, membershiprepo.ErrNotFound) {
		s.log.ErrorContext(ctx, "membership lookup failed", "trip_id", t.ID, "error", err)
		return Redemption{}, &Error{Status: 500, Code: "UNEXPECTED", Message: "could not join the trip"}
	}

	m := membershiprepo.Membership{
		TripID:   t.ID,
		Subject:  caller,
		Role:     domain.MemberRoleMember,
		JoinedAt: s.clk.Now(),
	}
	if err := s.memberships.Insert(ctx, m); err != nil {
		if errors.Is(err, membershiprepo.ErrAlreadyExists) {
			// Lost a concurrent redemption race; the outcome is the same.
			return Redemption{TripID: t.ID, TripName: t.Name, AlreadyMember: true}, nil
		}
		s.log.ErrorContext(ctx, "membership insert failed", "trip_id", t.ID, "error", err)
		return Redemption{}, &Error{Status: 502, Code: "JOIN_FAILED", Message: "could not join the trip"}
	}

	if s.cache != nil {
		s.cache.InvalidateTrips(ctx, caller)
	}
	return Redemption{TripID: t.ID, TripName: t.Name, Joined: true}, nil
}

func invalidCodeError() *Error {
	return &Error{Status: 404, Code: "INVALID_JOIN_CODE", Message: "no trip matches that join code"}
}
