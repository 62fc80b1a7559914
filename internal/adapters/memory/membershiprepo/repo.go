package membershiprepo

import (
	"context"
	"sort"
	"sync"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
)

type key struct {
	trip    domain.TripID
	subject domain.SubjectID
}

// Repo is an in-memory implementation of membershiprepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu    sync.RWMutex
	byKey map[key]membershiprepo.Membership
}

func NewRepo() *Repo {
	return &Repo{byKey: make(map[key]membershiprepo.Membership)}
}

func (r *Repo) Insert(ctx context.Context, m membershiprepo.Membership) error {
	_ = ctx
	k := key{trip: m.TripID, subject: m.Subject}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[k]; ok {
		return membershiprepo.ErrAlreadyExists
	}
	r.byKey[k] = m
	return nil
}

func (r *Repo) Get(ctx context.Context, tripID domain.TripID, subject domain.SubjectID) (membershiprepo.Membership, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byKey[key{trip: tripID, subject: subject}]
	if !ok {
		return membershiprepo.Membership{}, membershiprepo.ErrNotFound
	}
	return m, nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]membershiprepo.Membership, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]membershiprepo.Membership, 0)
	for k, m := range r.byKey {
		if k.trip == tripID {
			out = append(out, m)
		}
	}
	sortMemberships(out)
	return out, nil
}

func (r *Repo) ListBySubject(ctx context.Context, subject domain.SubjectID) ([]membershiprepo.Membership, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]membershiprepo.Membership, 0)
	for k, m := range r.byKey {
		if k.subject == subject {
			out = append(out, m)
		}
	}
	sortMemberships(out)
	return out, nil
}

func sortMemberships(ms []membershiprepo.Membership) {
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		if a.TripID != b.TripID {
			return a.TripID < b.TripID
		}
		return a.Subject < b.Subject
	})
}
