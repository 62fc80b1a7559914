package destinationrepo

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
	"github.com/triphive/triphive-api/internal/ports/out/destinationrepo"
)

// Repo is a Postgres implementation of destinationrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Insert(ctx context.Context, d domain.Destination) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	destUUID, err := uuid.Parse(string(d.ID))
	if err != nil {
		return fmt.Errorf("invalid destination id: %w", err)
	}
	tripUUID, err := uuid.Parse(string(d.TripID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO destinations (id, trip_id, name, country, iata)
		VALUES ($1,$2,$3,$4,$5)
	`, destUUID, tripUUID, d.Name, d.Country, d.IATA)
	if err != nil {
		if postgres.IsUniqueViolation(err, "destinations_pkey") {
			return destinationrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.DestinationID) (domain.Destination, error) {
	if r.pool == nil {
		return domain.Destination{}, errors.New("nil postgres pool")
	}
	destUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Destination{}, destinationrepo.ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, trip_id, name, country, iata
		FROM destinations
		WHERE id = $1
	`, destUUID)

	d, err := scanDestination(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Destination{}, destinationrepo.ErrNotFound
		}
		return domain.Destination{}, err
	}
	return d, nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Destination, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return []domain.Destination{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, trip_id, name, country, iata
		FROM destinations
		WHERE trip_id = $1
		ORDER BY name ASC
	`, tripUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Destination, 0)
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertVote(ctx context.Context, v domain.Vote) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	destUUID, err := uuid.Parse(string(v.DestinationID))
	if err != nil {
		return fmt.Errorf("invalid destination id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO destination_votes (destination_id, subject, liked, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (destination_id, subject) DO UPDATE SET
			liked = EXCLUDED.liked,
			updated_at = EXCLUDED.updated_at
	`, destUUID, string(v.Subject), v.Liked, v.UpdatedAt.UTC())
	return err
}

func (r *Repo) ListVotesByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Vote, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return []domain.Vote{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT v.destination_id, v.subject, v.liked, v.updated_at
		FROM destination_votes v
		JOIN destinations d ON d.id = v.destination_id
		WHERE d.trip_id = $1
		ORDER BY v.destination_id ASC, v.subject ASC
	`, tripUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Vote, 0)
	for rows.Next() {
		var (
			destID    uuid.UUID
			subject   string
			liked     bool
			updatedAt time.Time
		)
		if err := rows.Scan(&destID, &subject, &liked, &updatedAt); err != nil {
			return nil, err
		}
		out = append(out, domain.Vote{
			DestinationID: domain.DestinationID(destID.String()),
			Subject:       domain.SubjectID(subject),
			Liked:         liked,
			UpdatedAt:     updatedAt.UTC(),
		})
	}
	return out, rows.Err()
}

func scanDestination(row pgx.Row) (domain.Destination, error) {
	var (
		id      uuid.UUID
		tripID  uuid.UUID
		name    string
		country string
		iata    string
	)
	if err := row.Scan(&id, &tripID, &name, &country, &iata); err != nil {
		return domain.Destination{}, err
	}
	return domain.Destination{
		ID:      domain.DestinationID(id.String()),
		TripID:  domain.TripID(tripID.String()),
		Name:    name,
		Country: country,
		IATA:    iata,
	}, nil
}
