package domain

import "time"

type TravelPace string

const (
	TravelPaceRelaxed  TravelPace = "RELAXED"
	TravelPaceBalanced TravelPace = "BALANCED"
	TravelPacePacked   TravelPace = "PACKED"
)

// Preference records one member's travel constraints for a trip.
// All fields except the key are optional; nil means "not stated".
type Preference struct {
	TripID  TripID
	Subject SubjectID

	// OriginAirport is an IATA code, e.g. "SFO".
	OriginAirport *string
	// BudgetCents is the member's total per-person budget ceiling.
	BudgetCents *int64

	EarliestDeparture *time.Time // date-only semantics at the edges
	LatestReturn      *time.Time // date-only semantics at the edges

	Pace *TravelPace

	UpdatedAt time.Time
}
