package events

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventhub/internal/logger"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Save(ctx context.Context, event Event) (Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(Event), args.Error(1)
}

func (m *mockDB) GetByID(ctx context.Context, id string) (*Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

func (m *mockDB) List(ctx context.Context) ([]Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Event), args.Error(1)
}

func (m *mockDB) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEventCreated(ctx context.Context, event Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) PublishEventUpdated(ctx context.Context, event Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) PublishEventDeleted(ctx context.Context, event Event) error {
	return m.Called(ctx, event).Error(0)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(db *mockDB, pub *mockPublisher, now time.Time) *Service {
	return NewService(db, pub, fixedClock{now: now}, logger.NewWithWriter(io.Discard))
}

func TestCreateStampsTimestampsAndSaves(t *testing.T) {
	now := time.Date(2026, 1, 27, 9, 0, 0, 0, time.UTC)
	starts := now.Add(time.Hour)
	ends := now.Add(2 * time.Hour)

	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, now)

	db.On("Save", mock.Anything, mock.MatchedBy(func(e Event) bool {
		// The id must be left for the store to assign.
		return e.ID == "" && e.CreatedAt.Equal(now) && e.UpdatedAt.Equal(now)
	})).Return(Event{
		ID: "id-1", Title: "My Event", StartsAt: starts, EndsAt: &ends,
		CreatedAt: now, UpdatedAt: now,
	}, nil)
	pub.On("PublishEventCreated", mock.Anything, mock.Anything).Return(nil)

	saved, err := svc.Create(context.Background(), "My Event", starts, &ends)
	require.NoError(t, err)
	assert.Equal(t, "id-1", saved.ID)
	assert.True(t, saved.CreatedAt.Equal(saved.UpdatedAt))
	db.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateRejectsInvalidInterval(t *testing.T) {
	now := time.Date(2026, 1, 27, 9, 0, 0, 0, time.UTC)
	starts := now.Add(time.Hour)
	ends := starts // not strictly after

	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, now)

	_, err := svc.Create(context.Background(), "My Event", starts, &ends)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	db.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateSucceedsWhenPublishFails(t *testing.T) {
	now := time.Date(2026, 1, 27, 9, 0, 0, 0, time.UTC)
	starts := now.Add(time.Hour)

	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, now)

	db.On("Save", mock.Anything, mock.Anything).Return(Event{ID: "id-1", Title: "t", StartsAt: starts}, nil)
	pub.On("PublishEventCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	saved, err := svc.Create(context.Background(), "t", starts, nil)
	require.NoError(t, err)
	assert.Equal(t, "id-1", saved.ID)
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, time.Now())

	db.On("GetByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
}

func TestUpdateMergesOnlySuppliedFields(t *testing.T) {
	created := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)
	now := created.Add(24 * time.Hour)
	starts := time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)
	ends := starts.Add(time.Hour)

	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, now)

	db.On("GetByID", mock.Anything, "id-1").Return(&Event{
		ID: "id-1", Title: "My Event", StartsAt: starts, EndsAt: &ends,
		CreatedAt: created, UpdatedAt: created,
	}, nil)
	db.On("Save", mock.Anything, mock.MatchedBy(func(e Event) bool {
		return e.ID == "id-1" &&
			e.Title == "My Event Updated" &&
			e.StartsAt.Equal(starts) &&
			e.EndsAt != nil && e.EndsAt.Equal(ends) &&
			e.CreatedAt.Equal(created) &&
			e.UpdatedAt.Equal(now)
	})).Return(Event{
		ID: "id-1", Title: "My Event Updated", StartsAt: starts, EndsAt: &ends,
		CreatedAt: created, UpdatedAt: now,
	}, nil)
	pub.On("PublishEventUpdated", mock.Anything, mock.Anything).Return(nil)

	title := "My Event Updated"
	updated, err := svc.Update(context.Background(), "id-1", UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "My Event Updated", updated.Title)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	db.AssertExpectations(t)
}

func TestUpdateRevalidatesMergedRecord(t *testing.T) {
	created := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)
	starts := time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)
	ends := starts.Add(time.Hour)

	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, created.Add(time.Hour))

	db.On("GetByID", mock.Anything, "id-1").Return(&Event{
		ID: "id-1", Title: "My Event", StartsAt: starts, EndsAt: &ends,
		CreatedAt: created, UpdatedAt: created,
	}, nil)

	// Moving startsAt past the stored endsAt must fail validation.
	badStart := ends.Add(time.Hour)
	_, err := svc.Update(context.Background(), "id-1", UpdateInput{StartsAt: &badStart})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	db.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, time.Now())

	db.On("GetByID", mock.Anything, "missing").Return(nil, nil)

	title := "x"
	_, err := svc.Update(context.Background(), "missing", UpdateInput{Title: &title})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteChecksExistenceFirst(t *testing.T) {
	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, time.Now())

	db.On("GetByID", mock.Anything, "missing").Return(nil, nil)

	err := svc.Delete(context.Background(), "missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	db.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteExistingEvent(t *testing.T) {
	starts := time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)

	db := new(mockDB)
	pub := new(mockPublisher)
	svc := newTestService(db, pub, time.Now())

	db.On("GetByID", mock.Anything, "id-1").Return(&Event{ID: "id-1", Title: "t", StartsAt: starts}, nil)
	db.On("Delete", mock.Anything, "id-1").Return(nil)
	pub.On("PublishEventDeleted", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "id-1"))
	db.AssertExpectations(t)
	pub.AssertExpectations(t)
}
