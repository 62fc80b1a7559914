package domain

import "time"

// Destination is a candidate destination proposed for a trip.
type Destination struct {
	ID     DestinationID
	TripID TripID

	Name    string
	Country string
	// IATA is the destination's primary airport code, used for quote searches.
	IATA string
}

// Vote is one member's swipe verdict on a destination. Last write wins.
type Vote struct {
	DestinationID DestinationID
	Subject       SubjectID
	Liked         bool
	UpdatedAt     time.Time
}

// DestinationTally aggregates votes for one destination.
type DestinationTally struct {
	Destination Destination
	Likes       int
	Votes       int
	// ApprovalPct is Likes/Votes in percent, 0 when nobody voted.
	ApprovalPct int
}
