package destinationrepo

import (
	"context"

	"github.com/triphive/triphive-api/internal/domain"
)

// Repository provides access to candidate destinations and their votes.
type Repository interface {
	Insert(ctx context.Context, d domain.Destination) error

	GetByID(ctx context.Context, id domain.DestinationID) (domain.Destination, error)

	// ListByTrip returns destinations ordered by Name ascending.
	ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Destination, error)

	// UpsertVote writes a member's verdict with last-write-wins semantics.
	UpsertVote(ctx context.Context, v domain.Vote) error

	// ListVotesByTrip returns all votes for destinations belonging to the trip.
	ListVotesByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Vote, error)
}
