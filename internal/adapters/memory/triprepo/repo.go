package triprepo

import (
	"context"
	"sync"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

// Repo is an in-memory implementation of triprepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	byID   map[domain.TripID]triprepo.Trip
	byCode map[domain.JoinCode]domain.TripID
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[domain.TripID]triprepo.Trip),
		byCode: make(map[domain.JoinCode]domain.TripID),
	}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	_ = ctx
	if t.ID == "" {
		return triprepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; ok {
		return triprepo.ErrAlreadyExists
	}
	if existing, ok := r.byCode[t.JoinCode]; ok && existing != t.ID {
		return triprepo.ErrJoinCodeTaken
	}
	r.byID[t.ID] = cloneTrip(t)
	r.byCode[t.JoinCode] = t.ID
	return nil
}

func (r *Repo) Save(ctx context.Context, t triprepo.Trip) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[t.ID]
	if !ok {
		return triprepo.ErrNotFound
	}
	// Join codes are immutable once set.
	t.JoinCode = existing.JoinCode
	r.byID[t.ID] = cloneTrip(t)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	return cloneTrip(t), nil
}

func (r *Repo) GetByJoinCode(ctx context.Context, code domain.JoinCode) (triprepo.Trip, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[code]
	if !ok {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	t, ok := r.byID[id]
	if !ok {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	return cloneTrip(t), nil
}

func cloneTrip(t triprepo.Trip) triprepo.Trip {
	cp := t
	cp.Description = cloneStringPtr(t.Description)
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
