package preferencerepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/preferencerepo"
)

type key struct {
	trip    domain.TripID
	subject domain.SubjectID
}

// Repo is an in-memory implementation of preferencerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu    sync.RWMutex
	byKey map[key]domain.Preference
}

func NewRepo() *Repo {
	return &Repo{byKey: make(map[key]domain.Preference)}
}

func (r *Repo) Upsert(ctx context.Context, p domain.Preference) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[key{trip: p.TripID, subject: p.Subject}] = clonePreference(p)
	return nil
}

func (r *Repo) Get(ctx context.Context, tripID domain.TripID, subject domain.SubjectID) (domain.Preference, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byKey[key{trip: tripID, subject: subject}]
	if !ok {
		return domain.Preference{}, preferencerepo.ErrNotFound
	}
	return clonePreference(p), nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Preference, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Preference, 0)
	for k, p := range r.byKey {
		if k.trip == tripID {
			out = append(out, clonePreference(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func clonePreference(p domain.Preference) domain.Preference {
	cp := p
	cp.OriginAirport = cloneStringPtr(p.OriginAirport)
	cp.BudgetCents = cloneInt64Ptr(p.BudgetCents)
	cp.EarliestDeparture = cloneTimePtr(p.EarliestDeparture)
	cp.LatestReturn = cloneTimePtr(p.LatestReturn)
	if p.Pace != nil {
		v := *p.Pace
		cp.Pace = &v
	}
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt64Ptr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
