package destinationrepo

import "errors"

var (
	ErrNotFound      = errors.New("destination not found")
	ErrAlreadyExists = errors.New("destination already exists")
)
