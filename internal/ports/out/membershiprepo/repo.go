package membershiprepo

import (
	"context"
	"time"

	"github.com/triphive/triphive-api/internal/domain"
)

// Membership is the persistence shape used by the membership repository.
type Membership struct {
	TripID  domain.TripID
	Subject domain.SubjectID
	Role    domain.MemberRole

	JoinedAt time.Time
}

// Repository provides access to persisted memberships.
//
// (TripID, Subject) is the composite key; the store enforces uniqueness and
// Insert returns ErrAlreadyExists on a duplicate. That constraint is the sole
// correctness backstop for concurrent redemptions of the same code.
type Repository interface {
	Insert(ctx context.Context, m Membership) error

	Get(ctx context.Context, tripID domain.TripID, subject domain.SubjectID) (Membership, error)

	// ListByTrip returns memberships ordered by JoinedAt ascending.
	ListByTrip(ctx context.Context, tripID domain.TripID) ([]Membership, error)

	// ListBySubject returns memberships ordered by JoinedAt ascending.
	ListBySubject(ctx context.Context, subject domain.SubjectID) ([]Membership, error)
}
