package events

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/logger"
)

// DBLayer is the persistence contract the service depends on.
//
// Save inserts when the event has no id and assigns one; for an event that
// carries an id it must fail with *NotFoundError when no such row exists.
// Upserts are not allowed. Delete is idempotent at this layer; the service
// pre-checks existence when a not-found signal is required.
type DBLayer interface {
	Save(ctx context.Context, event Event) (Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	Delete(ctx context.Context, id string) error
}

// Publisher streams event lifecycle notifications. Implementations must not
// block request handling on broker trouble; errors are logged by the
// service and never surfaced to the caller.
type Publisher interface {
	PublishEventCreated(ctx context.Context, event Event) error
	PublishEventUpdated(ctx context.Context, event Event) error
	PublishEventDeleted(ctx context.Context, event Event) error
}

// Clock supplies the current time so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type Service struct {
	DB        DBLayer
	Publisher Publisher
	Clock     Clock
	Logger    *logger.Logger
}

func NewService(db DBLayer, publisher Publisher, clock Clock, log *logger.Logger) *Service {
	return &Service{DB: db, Publisher: publisher, Clock: clock, Logger: log}
}

// UpdateInput carries the partial-update fields; nil means "keep the stored
// value".
type UpdateInput struct {
	Title    *string
	StartsAt *time.Time
	EndsAt   *time.Time
}

// Create stamps audit timestamps, enforces the domain invariant and
// persists. The store assigns the id.
func (s *Service) Create(ctx context.Context, title string, startsAt time.Time, endsAt *time.Time) (Event, error) {
	now := s.Clock.Now()
	event := Event{
		Title:     title,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := event.Validate(); err != nil {
		return Event{}, err
	}

	saved, err := s.DB.Save(ctx, event)
	if err != nil {
		return Event{}, err
	}

	if err := s.Publisher.PublishEventCreated(ctx, saved); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish event created for %s: %v", saved.ID, err))
	}

	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	event, err := s.DB.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if event == nil {
		return Event{}, &NotFoundError{ID: id}
	}
	return *event, nil
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.DB.List(ctx)
}

// Update merges the supplied fields over the stored record, refreshes
// UpdatedAt, re-validates and persists the rebuilt event.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Event, error) {
	existing, err := s.DB.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if existing == nil {
		return Event{}, &NotFoundError{ID: id}
	}

	updated := Event{
		ID:        existing.ID,
		Title:     existing.Title,
		StartsAt:  existing.StartsAt,
		EndsAt:    existing.EndsAt,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.Clock.Now(),
	}
	if in.Title != nil {
		updated.Title = *in.Title
	}
	if in.StartsAt != nil {
		updated.StartsAt = *in.StartsAt
	}
	if in.EndsAt != nil {
		updated.EndsAt = in.EndsAt
	}

	if err := updated.Validate(); err != nil {
		return Event{}, err
	}

	saved, err := s.DB.Save(ctx, updated)
	if err != nil {
		return Event{}, err
	}

	if err := s.Publisher.PublishEventUpdated(ctx, saved); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish event updated for %s: %v", saved.ID, err))
	}

	return saved, nil
}

// Delete removes the event permanently. Deleting an unknown id is an error
// here even though the store's delete itself is idempotent.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.DB.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return &NotFoundError{ID: id}
	}

	if err := s.DB.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.Publisher.PublishEventDeleted(ctx, *existing); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish event deleted for %s: %v", id, err))
	}

	return nil
}
