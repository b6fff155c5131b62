package ids

import "github.com/segmentio/ksuid"

// New returns a new time-sortable identifier.
func New() string {
	return ksuid.New().String()
}
