package preferences

import (
	"time"

	"github.com/triphive/triphive-api/internal/domain"
)

// SetPreferencesInput carries the caller's stated constraints.
// Nil fields are left unset; this endpoint replaces the whole record.
type SetPreferencesInput struct {
	OriginAirport *string
	BudgetCents   *int64

	EarliestDeparture *time.Time
	LatestReturn      *time.Time

	Pace *domain.TravelPace
}
