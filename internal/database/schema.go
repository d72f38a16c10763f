package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"techcrew/internal/models"
)

// tables in dependency order.
var tables = []any{
	(*models.User)(nil),
	(*models.Band)(nil),
	(*models.GigLog)(nil),
	(*models.Schedule)(nil),
	(*models.Issue)(nil),
	(*models.InventoryCategory)(nil),
	(*models.InventoryItem)(nil),
}

// CreateSchema creates every table from the bun models. It is used for
// SQLite, where the Postgres migrations do not apply.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return SeedCategories(ctx, db)
}

// DropSchema drops every table in reverse dependency order.
func DropSchema(ctx context.Context, db bun.IDB) error {
	for i := len(tables) - 1; i >= 0; i-- {
		q := db.NewDropTable().Model(tables[i]).IfExists()
		if db.Dialect().Name() == dialect.PG {
			q = q.Cascade()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", tables[i], err)
		}
	}
	return nil
}

// SeedCategories inserts the default inventory categories when none exist.
func SeedCategories(ctx context.Context, db bun.IDB) error {
	n, err := db.NewSelect().Model((*models.InventoryCategory)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]models.InventoryCategory, 0, len(models.DefaultCategories))
	for _, name := range models.DefaultCategories {
		rows = append(rows, models.InventoryCategory{ID: uuid.NewString(), Name: name, CreatedAt: now})
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	return nil
}
