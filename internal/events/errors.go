package events

import "fmt"

// ValidationError reports a violated business invariant.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports that no event exists for the given id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event not found with id: %s", e.ID)
}
