package events

import (
	"fmt"
	"time"
)

// Event is the domain record. A not-yet-persisted event has an empty ID;
// the store assigns one on first save. Updates replace the record wholesale,
// they never mutate in place.
type Event struct {
	ID        string
	Title     string
	StartsAt  time.Time
	EndsAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the single business invariant: when EndsAt is set it must
// be strictly after StartsAt. Title constraints are checked at the request
// binding layer, not here.
func (e Event) Validate() error {
	if e.EndsAt != nil && !e.EndsAt.After(e.StartsAt) {
		return &ValidationError{
			Message: fmt.Sprintf("endsAt must be after startsAt. startsAt: %s, endsAt: %s",
				e.StartsAt.Format(time.RFC3339), e.EndsAt.Format(time.RFC3339)),
		}
	}
	return nil
}
