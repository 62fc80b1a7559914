package triprepo

import "errors"

var (
	ErrNotFound      = errors.New("trip not found")
	ErrAlreadyExists = errors.New("trip already exists")

	// ErrJoinCodeTaken indicates another trip already holds the join code.
	// Callers should mint a fresh code and retry.
	ErrJoinCodeTaken = errors.New("join code already taken")
)
