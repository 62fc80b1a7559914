package preferencerepo

import (
	"context"

	"github.com/triphive/triphive-api/internal/domain"
)

// Repository provides access to per-member trip preferences.
// (TripID, Subject) is the key; Upsert uses last-write-wins semantics.
type Repository interface {
	Upsert(ctx context.Context, p domain.Preference) error

	Get(ctx context.Context, tripID domain.TripID, subject domain.SubjectID) (domain.Preference, error)

	// ListByTrip returns preferences ordered by Subject ascending.
	ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Preference, error)
}
