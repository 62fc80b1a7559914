package joincode

import "github.com/triphive/triphive-api/internal/domain"

// Redemption is the outcome of a successful code redemption.
// Exactly one of Joined and AlreadyMember is true.
type Redemption struct {
	TripID   domain.TripID
	TripName string

	Joined        bool
	AlreadyMember bool
}
