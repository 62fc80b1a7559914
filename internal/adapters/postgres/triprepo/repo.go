package triprepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/triphive/triphive-api/internal/adapters/postgres"
	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

// Repo is a Postgres implementation of triprepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(t.ID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO trips (id, name, description, owner_subject, status, join_code, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		tripUUID,
		t.Name,
		t.Description,
		string(t.OwnerSubject),
		string(t.Status),
		string(t.JoinCode),
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "trips_join_code_key":
				return triprepo.ErrJoinCodeTaken
			default:
				return triprepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, t triprepo.Trip) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(t.ID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}

	// join_code and owner_subject are immutable; deliberately not updated.
	tag, err := r.pool.Exec(ctx, `
		UPDATE trips
		SET name = $2,
		    description = $3,
		    status = $4,
		    updated_at = $5
		WHERE id = $1
	`,
		tripUUID,
		t.Name,
		t.Description,
		string(t.Status),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return triprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	if r.pool == nil {
		return triprepo.Trip{}, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(id))
	if err != nil {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	return r.getOne(ctx, `WHERE id = $1`, tripUUID)
}

func (r *Repo) GetByJoinCode(ctx context.Context, code domain.JoinCode) (triprepo.Trip, error) {
	if r.pool == nil {
		return triprepo.Trip{}, errors.New("nil postgres pool")
	}
	return r.getOne(ctx, `WHERE join_code = $1`, string(code))
}

func (r *Repo) getOne(ctx context.Context, where string, arg any) (triprepo.Trip, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, description, owner_subject, status, join_code, created_at, updated_at
		FROM trips
	`+where, arg)

	var (
		id        uuid.UUID
		name      string
		desc      *string
		owner     string
		status    string
		joinCode  string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &desc, &owner, &status, &joinCode, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return triprepo.Trip{}, triprepo.ErrNotFound
		}
		return triprepo.Trip{}, err
	}

	return triprepo.Trip{
		ID:           domain.TripID(id.String()),
		Name:         name,
		Description:  desc,
		OwnerSubject: domain.SubjectID(owner),
		Status:       domain.TripStatus(status),
		JoinCode:     domain.JoinCode(joinCode),
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}, nil
}
