package viewcache

import (
	"context"

	"github.com/triphive/triphive-api/internal/domain"
)

// Invalidator receives "the set of trips visible to this subject may have
// changed" signals. Calls are fire-and-forget: implementations must not block
// the caller and there is no acknowledgment.
type Invalidator interface {
	InvalidateTrips(ctx context.Context, subject domain.SubjectID)
}
