package service

import (
	"context"
	"strings"
	"time"

	"techcrew/internal/models"
	"techcrew/internal/session"
	"techcrew/internal/store"
)

type Inventory struct {
	*entity[models.InventoryItem]
}

func NewInventory(deps Deps) *Inventory {
	return &Inventory{newEntity[models.InventoryItem](deps, models.TableInventory,
		filterColumns{owner: "created_by"},
		[]string{"category.name ASC", "?TableAlias.model ASC"},
		"Category",
	)}
}

func (iv *Inventory) categoryExists(ctx context.Context, id string) error {
	ok, err := store.New[models.InventoryCategory](iv.deps.DB).Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &models.FieldError{Field: "category_id", Reason: "does not match a category"}
	}
	return nil
}

func (iv *Inventory) Create(ctx context.Context, in models.InventoryItemInput) (*models.InventoryItem, error) {
	s, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	if err := iv.categoryExists(ctx, *in.CategoryID); err != nil {
		return nil, err
	}
	now := iv.deps.now()
	row := &models.InventoryItem{
		ID:         iv.deps.newID(),
		CategoryID: *in.CategoryID,
		Model:      strings.TrimSpace(*in.Model),
		Quantity:   *in.Quantity,
		CreatedBy:  s.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Notes != nil {
		row.Notes = *in.Notes
	}
	return iv.insert(ctx, s, row)
}

func (iv *Inventory) Update(ctx context.Context, id string, in models.InventoryItemInput) (*models.InventoryItem, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	return iv.update(ctx, id, func(ctx context.Context, row *models.InventoryItem, now time.Time) ([]string, error) {
		if in.CategoryID != nil && *in.CategoryID != row.CategoryID {
			if err := iv.categoryExists(ctx, *in.CategoryID); err != nil {
				return nil, err
			}
		}
		var cols []string
		cols = set(cols, "category_id", &row.CategoryID, in.CategoryID)
		cols = setText(cols, "model", &row.Model, in.Model)
		cols = set(cols, "quantity", &row.Quantity, in.Quantity)
		cols = set(cols, "notes", &row.Notes, in.Notes)
		row.UpdatedAt = now
		return cols, nil
	})
}

func (iv *Inventory) Categories(ctx context.Context) ([]models.InventoryCategory, error) {
	return store.Categories(ctx, iv.deps.DB)
}

func (iv *Inventory) Overview(ctx context.Context) ([]models.CategoryTotal, error) {
	return store.InventoryOverview(ctx, iv.deps.DB)
}
