package preferencerepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/preferencerepo"
)

// Repo is a Postgres implementation of preferencerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Upsert(ctx context.Context, p domain.Preference) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(p.TripID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}

	var pace *string
	if p.Pace != nil {
		v := string(*p.Pace)
		pace = &v
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO preferences (trip_id, subject, origin_airport, budget_cents, earliest_departure, latest_return, pace, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (trip_id, subject) DO UPDATE SET
			origin_airport = EXCLUDED.origin_airport,
			budget_cents = EXCLUDED.budget_cents,
			earliest_departure = EXCLUDED.earliest_departure,
			latest_return = EXCLUDED.latest_return,
			pace = EXCLUDED.pace,
			updated_at = EXCLUDED.updated_at
	`,
		tripUUID,
		string(p.Subject),
		p.OriginAirport,
		p.BudgetCents,
		datePtr(p.EarliestDeparture),
		datePtr(p.LatestReturn),
		pace,
		p.UpdatedAt.UTC(),
	)
	return err
}

func (r *Repo) Get(ctx context.Context, tripID domain.TripID, subject domain.SubjectID) (domain.Preference, error) {
	if r.pool == nil {
		return domain.Preference{}, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return domain.Preference{}, preferencerepo.ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `
		SELECT trip_id, subject, origin_airport, budget_cents, earliest_departure, latest_return, pace, updated_at
		FROM preferences
		WHERE trip_id = $1 AND subject = $2
	`, tripUUID, string(subject))

	p, err := scanPreference(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Preference{}, preferencerepo.ErrNotFound
		}
		return domain.Preference{}, err
	}
	return p, nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Preference, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return []domain.Preference{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT trip_id, subject, origin_airport, budget_cents, earliest_departure, latest_return, pace, updated_at
		FROM preferences
		WHERE trip_id = $1
		ORDER BY subject ASC
	`, tripUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Preference, 0)
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPreference(row pgx.Row) (domain.Preference, error) {
	var (
		tripID    uuid.UUID
		subject   string
		origin    *string
		budget    *int64
		earliest  pgtype.Date
		latest    pgtype.Date
		pace      *string
		updatedAt time.Time
	)
	if err := row.Scan(&tripID, &subject, &origin, &budget, &earliest, &latest, &pace, &updatedAt); err != nil {
		return domain.Preference{}, err
	}

	var pacePtr *domain.TravelPace
	if pace != nil {
		v := domain.TravelPace(*pace)
		pacePtr = &v
	}
	return domain.Preference{
		TripID:            domain.TripID(tripID.String()),
		Subject:           domain.SubjectID(subject),
		OriginAirport:     origin,
		BudgetCents:       budget,
		EarliestDeparture: dateToTimePtr(earliest),
		LatestReturn:      dateToTimePtr(latest),
		Pace:              pacePtr,
		UpdatedAt:         updatedAt.UTC(),
	}, nil
}

func datePtr(t *time.Time) pgtype.Date {
	var d pgtype.Date
	if t == nil {
		return d
	}
	tt := t.UTC()
	d.Time = time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC)
	d.Valid = true
	return d
}

func dateToTimePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}
