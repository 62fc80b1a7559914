package viewcache

import (
	"context"
	"sync"

	"github.com/triphive/triphive-api/internal/domain"
)

// Recorder is an in-process viewcache.Invalidator. It only counts signals:
// with a single API process there is no remote page cache to revalidate, but
// wiring the signal keeps redemption behavior observable and testable.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	counts map[domain.SubjectID]int
}

func NewRecorder() *Recorder {
	return &Recorder{counts: make(map[domain.SubjectID]int)}
}

func (r *Recorder) InvalidateTrips(_ context.Context, subject domain.SubjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[subject]++
}

// Invalidations reports how many signals were recorded for the subject.
func (r *Recorder) Invalidations(subject domain.SubjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[subject]
}
