package event_api

import (
	"time"

	"eventhub/internal/events"
	"eventhub/internal/httpapi"
)

const maxTitleLen = 255

type createEventRequest struct {
	Title    string     `json:"title"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

func (r createEventRequest) validate() error {
	var errs httpapi.FieldErrors
	if r.Title == "" {
		errs = append(errs, "title: Title is required")
	}
	if len(r.Title) > maxTitleLen {
		errs = append(errs, "title: Title must not exceed 255 characters")
	}
	if r.StartsAt == nil {
		errs = append(errs, "startsAt: startsAt is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// updateEventRequest is a partial update; nil fields keep the stored value.
type updateEventRequest struct {
	Title    *string    `json:"title"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

func (r updateEventRequest) validate() error {
	var errs httpapi.FieldErrors
	if r.Title != nil && len(*r.Title) > maxTitleLen {
		errs = append(errs, "title: Title must not exceed 255 characters")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type eventResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartsAt  time.Time  `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func toResponse(event events.Event) eventResponse {
	return eventResponse{
		ID:        event.ID,
		Title:     event.Title,
		StartsAt:  event.StartsAt,
		EndsAt:    event.EndsAt,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}
