package domain

// SubjectID is the authenticated subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// TripID is an internal identifier for a trip record.
type TripID string

// DestinationID is an internal identifier for a candidate destination on a trip.
type DestinationID string

// JoinCode is the short human-enterable token granting membership to a trip.
// Codes are stored uppercase; see NormalizeJoinCode.
type JoinCode string
