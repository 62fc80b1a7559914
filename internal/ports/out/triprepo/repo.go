package triprepo

import (
	"context"
	"time"

	"github.com/triphive/triphive-api/internal/domain"
)

// Trip is the persistence shape used by the trip repository.
// It is not an HTTP DTO.
type Trip struct {
	ID domain.TripID

	Name        string
	Description *string

	OwnerSubject domain.SubjectID
	Status       domain.TripStatus

	// JoinCode is unique across all trips; the store enforces this with a
	// uniqueness constraint (Create returns ErrJoinCodeTaken on conflict).
	JoinCode domain.JoinCode

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted trips.
type Repository interface {
	Create(ctx context.Context, t Trip) error
	Save(ctx context.Context, t Trip) error

	GetByID(ctx context.Context, id domain.TripID) (Trip, error)

	// GetByJoinCode resolves a trip by its exact (already uppercased) join code.
	GetByJoinCode(ctx context.Context, code domain.JoinCode) (Trip, error)
}
