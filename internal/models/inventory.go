package models

import (
	"time"

	"github.com/uptrace/bun"
)

type InventoryCategory struct {
	bun.BaseModel `bun:"table:inventory_categories,alias:category"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull,unique" json:"name"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

// DefaultCategories are seeded into an empty database.
var DefaultCategories = []string{
	"Main PA / Monitors",
	"Vocal Mics",
	"Instrument Mics",
	"Mic Stands",
	"Cables",
}

type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory_items,alias:item"`

	ID         string    `bun:"id,pk" json:"id"`
	CategoryID string    `bun:"category_id,notnull" json:"category_id"`
	Model      string    `bun:"model,notnull" json:"model"`
	Quantity   int       `bun:"quantity,notnull" json:"quantity"`
	Notes      string    `bun:"notes,nullzero" json:"notes,omitempty"`
	CreatedBy  string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updated_at"`

	Category *InventoryCategory `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

func (i InventoryItem) RecordID() string { return i.ID }
func (i InventoryItem) OwnerID() string  { return i.CreatedBy }

func (i InventoryItem) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.Name
}

type InventoryItemInput struct {
	CategoryID *string `json:"category_id,omitempty"`
	Model      *string `json:"model,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (in InventoryItemInput) Validate(create bool) error {
	if err := requireText("category_id", in.CategoryID, create); err != nil {
		return err
	}
	if err := requireText("model", in.Model, create); err != nil {
		return err
	}
	if in.Quantity == nil {
		if create {
			return required("quantity")
		}
	} else if *in.Quantity < 0 {
		return invalid("quantity", "cannot be negative")
	}
	return nil
}

// CategoryTotal is one card of the inventory overview.
type CategoryTotal struct {
	CategoryID string `bun:"category_id" json:"category_id"`
	Category   string `bun:"category" json:"category"`
	Items      int    `bun:"items" json:"items"`
	Quantity   int    `bun:"quantity" json:"quantity"`
}
