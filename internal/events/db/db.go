package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"eventhub/internal/events"
	"eventhub/internal/models"
)

// DB adapts the events store contract onto bun.
type DB struct {
	Bun *bun.DB
}

// Save inserts the event when it carries no id, assigning a fresh uuid.
// With an id it updates the existing row and fails with *NotFoundError when
// the row does not exist; a save never turns into an upsert.
func (d *DB) Save(ctx context.Context, event events.Event) (events.Event, error) {
	row := toRow(event)

	if row.ID == "" {
		row.ID = uuid.New().String()
		if _, err := d.Bun.NewInsert().Model(&row).Exec(ctx); err != nil {
			return events.Event{}, err
		}
		return toDomain(row), nil
	}

	exists, err := d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", row.ID).
		Exists(ctx)
	if err != nil {
		return events.Event{}, err
	}
	if !exists {
		return events.Event{}, &events.NotFoundError{ID: row.ID}
	}

	_, err = d.Bun.NewUpdate().
		Model(&row).
		Column("title", "starts_at", "ends_at", "created_at", "updated_at").
		Where("id = ?", row.ID).
		Exec(ctx)
	if err != nil {
		return events.Event{}, err
	}
	return toDomain(row), nil
}

// GetByID returns nil without error when no row matches.
func (d *DB) GetByID(ctx context.Context, id string) (*events.Event, error) {
	var row models.Event
	err := d.Bun.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	event := toDomain(row)
	return &event, nil
}

func (d *DB) List(ctx context.Context) ([]events.Event, error) {
	var rows []models.Event
	err := d.Bun.NewSelect().
		Model(&rows).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]events.Event, len(rows))
	for i, row := range rows {
		result[i] = toDomain(row)
	}
	return result, nil
}

// Delete removes the row if present. Deleting an unknown id is not an error
// at this layer.
func (d *DB) Delete(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func toRow(event events.Event) models.Event {
	return models.Event{
		ID:        event.ID,
		Title:     event.Title,
		StartsAt:  event.StartsAt,
		EndsAt:    event.EndsAt,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}

func toDomain(row models.Event) events.Event {
	return events.Event{
		ID:        row.ID,
		Title:     row.Title,
		StartsAt:  row.StartsAt,
		EndsAt:    row.EndsAt,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
