package estimates

import "time"

// EstimateInput selects what to price. Zero Depart/Return fall back to the
// members' preferred window.
type EstimateInput struct {
	Destination string // IATA

	Depart time.Time
	Return time.Time
}
