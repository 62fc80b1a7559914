package domain

import "time"

type TripStatus string

const (
	TripStatusPlanning TripStatus = "PLANNING"
	TripStatusBooked   TripStatus = "BOOKED"
	TripStatusArchived TripStatus = "ARCHIVED"
)

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// Trip is a shared planning session owned by one user and joinable by others
// via its join code.
type Trip struct {
	ID          TripID
	Name        string
	Description *string

	OwnerSubject SubjectID
	Status       TripStatus

	// JoinCode is immutable once set; there is no rotation mechanism.
	JoinCode JoinCode

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership grants a subject access to a trip. (TripID, Subject) is unique.
type Membership struct {
	TripID   TripID
	Subject  SubjectID
	Role     MemberRole
	JoinedAt time.Time
}

// TripDetails is the read model returned for a single trip.
type TripDetails struct {
	Trip
	Members []Membership
}
