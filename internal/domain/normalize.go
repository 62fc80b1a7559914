package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for trip name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeJoinCode uppercases a user-entered join code and strips surrounding
// whitespace. Generation always emits uppercase, but input may arrive in any
// case from a form field or scanned QR payload.
func NormalizeJoinCode(s string) JoinCode {
	return JoinCode(strings.ToUpper(strings.TrimSpace(s)))
}
