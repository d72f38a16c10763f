package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"techcrew/internal/models"
)

// UpsertUser records the profile behind a token subject. An existing
// row keeps its role and creation time.
func UpsertUser(ctx context.Context, db bun.IDB, u *models.User) error {
	_, err := db.NewInsert().Model(u).
		On("CONFLICT (id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("full_name = EXCLUDED.full_name").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}

func GetUser(ctx context.Context, db bun.IDB, id string) (*models.User, error) {
	return New[models.User](db).Get(ctx, id)
}
