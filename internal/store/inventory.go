package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"techcrew/internal/models"
)

func Categories(ctx context.Context, db bun.IDB) ([]models.InventoryCategory, error) {
	cats := make([]models.InventoryCategory, 0)
	if err := db.NewSelect().Model(&cats).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// InventoryOverview totals item rows and quantities per category,
// including empty categories.
func InventoryOverview(ctx context.Context, db bun.IDB) ([]models.CategoryTotal, error) {
	totals := make([]models.CategoryTotal, 0)
	err := db.NewSelect().
		TableExpr("inventory_categories AS c").
		ColumnExpr("c.id AS category_id").
		ColumnExpr("c.name AS category").
		ColumnExpr("COUNT(i.id) AS items").
		ColumnExpr("COALESCE(SUM(i.quantity), 0) AS quantity").
		Join("LEFT JOIN inventory_items AS i ON i.category_id = c.id").
		GroupExpr("c.id, c.name").
		OrderExpr("c.name ASC").
		Scan(ctx, &totals)
	if err != nil {
		return nil, fmt.Errorf("inventory overview: %w", err)
	}
	return totals, nil
}
