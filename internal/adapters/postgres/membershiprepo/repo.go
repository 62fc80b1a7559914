package membershiprepo

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
	"github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
)

// Repo is a Postgres implementation of membershiprepo.Repository.
//
// The memberships primary key is (trip_id, subject); the resulting unique
// violation on Insert maps to ErrAlreadyExists.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Insert(ctx context.Context, m membershiprepo.Membership) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(m.TripID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO memberships (trip_id, subject, role, joined_at)
		VALUES ($1,$2,$3,$4)
	`, tripUUID, string(m.Subject), string(m.Role), m.JoinedAt.UTC())
	if err != nil {
		if postgres.IsUniqueViolation(err, "memberships_pkey") {
			return membershiprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, tripID domain.TripID, subject domain.SubjectID) (membershiprepo.Membership, error) {
	if r.pool == nil {
		return membershiprepo.Membership{}, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return membershiprepo.Membership{}, membershiprepo.ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `
		SELECT trip_id, subject, role, joined_at
		FROM memberships
		WHERE trip_id = $1 AND subject = $2
	`, tripUUID, string(subject))

	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membershiprepo.Membership{}, membershiprepo.ErrNotFound
		}
		return membershiprepo.Membership{}, err
	}
	return m, nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]membershiprepo.Membership, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return []membershiprepo.Membership{}, nil
	}
	return r.list(ctx, `WHERE trip_id = $1`, tripUUID)
}

func (r *Repo) ListBySubject(ctx context.Context, subject domain.SubjectID) ([]membershiprepo.Membership, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	return r.list(ctx, `WHERE subject = $1`, string(subject))
}

func (r *Repo) list(ctx context.Context, where string, arg any) ([]membershiprepo.Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT trip_id, subject, role, joined_at
		FROM memberships
	`+where+`
		ORDER BY joined_at ASC, subject ASC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]membershiprepo.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMembership(row pgx.Row) (membershiprepo.Membership, error) {
	var (
		tripID   uuid.UUID
		subject  string
		role     string
		joinedAt time.Time
	)
	if err := row.Scan(&tripID, &subject, &role, &joinedAt); err != nil {
		return membershiprepo.Membership{}, err
	}
	return membershiprepo.Membership{
		TripID:   domain.TripID(tripID.String()),
		Subject:  domain.SubjectID(subject),
		Role:     domain.MemberRole(role),
		JoinedAt: joinedAt.UTC(),
	}, nil
}
