package migrations

import (
	"context"

	"github.com/uptrace/bun"

	"eventhub/internal/models"
)

// Run creates the schema if it does not exist yet. Safe to call on every
// startup.
func Run(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*models.Event)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}
