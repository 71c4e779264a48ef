package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID        string     `bun:"id,pk"`
	Title     string     `bun:"title,notnull"`
	StartsAt  time.Time  `bun:"starts_at,notnull"`
	EndsAt    *time.Time `bun:"ends_at"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
	UpdatedAt time.Time  `bun:"updated_at,notnull"`
}
