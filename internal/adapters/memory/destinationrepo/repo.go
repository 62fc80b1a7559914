package destinationrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/destinationrepo"
)

type voteKey struct {
	dest    domain.DestinationID
	subject domain.SubjectID
}

// Repo is an in-memory implementation of destinationrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu    sync.RWMutex
	byID  map[domain.DestinationID]domain.Destination
	votes map[voteKey]domain.Vote
}

func NewRepo() *Repo {
	return &Repo{
		byID:  make(map[domain.DestinationID]domain.Destination),
		votes: make(map[voteKey]domain.Vote),
	}
}

func (r *Repo) Insert(ctx context.Context, d domain.Destination) error {
	_ = ctx
	if d.ID == "" {
		return destinationrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[d.ID]; ok {
		return destinationrepo.ErrAlreadyExists
	}
	r.byID[d.ID] = d
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.DestinationID) (domain.Destination, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	if !ok {
		return domain.Destination{}, destinationrepo.ErrNotFound
	}
	return d, nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Destination, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Destination, 0)
	for _, d := range r.byID {
		if d.TripID == tripID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a := strings.ToLower(out[i].Name)
		b := strings.ToLower(out[j].Name)
		if a == b {
			return out[i].ID < out[j].ID
		}
		return a < b
	})
	return out, nil
}

func (r *Repo) UpsertVote(ctx context.Context, v domain.Vote) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[v.DestinationID]; !ok {
		return destinationrepo.ErrNotFound
	}
	r.votes[voteKey{dest: v.DestinationID, subject: v.Subject}] = v
	return nil
}

func (r *Repo) ListVotesByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Vote, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Vote, 0)
	for _, v := range r.votes {
		d, ok := r.byID[v.DestinationID]
		if !ok || d.TripID != tripID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DestinationID != out[j].DestinationID {
			return out[i].DestinationID < out[j].DestinationID
		}
		return out[i].Subject < out[j].Subject
	})
	return out, nil
}
