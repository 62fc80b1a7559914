package clock

import "time"

// Clock provides time to the application. An interface keeps timestamps
// controllable in tests.
type Clock interface {
	Now() time.Time
}
