package membershiprepo

import "errors"

var (
	// ErrNotFound indicates no membership exists for the (trip, subject) pair.
	ErrNotFound = errors.New("membership not found")

	// ErrAlreadyExists indicates a membership already exists for the
	// (trip, subject) pair. Redemption treats this as "already a member".
	ErrAlreadyExists = errors.New("membership already exists")
)
