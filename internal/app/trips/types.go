package trips

import "github.com/triphive/triphive-api/internal/domain"

type CreateTripInput struct {
	Name        string
	Description *string
}

// TripCreated is the minimal response returned when a trip is created.
type TripCreated struct {
	ID       domain.TripID
	Name     string
	Status   domain.TripStatus
	JoinCode domain.JoinCode
}

// MyTrip pairs a trip with the caller's role in it.
type MyTrip struct {
	Trip domain.Trip
	Role domain.MemberRole
}
