package travelquotes

import "errors"

// ErrUnavailable indicates the upstream travel API could not serve the search
// (outage, timeout, or malformed response after retries).
var ErrUnavailable = errors.New("travel provider unavailable")
