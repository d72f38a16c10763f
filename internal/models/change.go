package models

import "time"

const (
	TableBands      = "bands"
	TableGigLogs    = "gig_logs"
	TableSchedules  = "schedules"
	TableIssues     = "issues"
	TableInventory  = "inventory_items"
	TableCategories = "inventory_categories"
	TableUsers      = "users"
)

type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// Change is one row-level write notification.
type Change struct {
	Table   string    `json:"table"`
	Op      ChangeOp  `json:"op"`
	ID      string    `json:"id"`
	ActorID string    `json:"actor_id,omitempty"`
	At      time.Time `json:"at"`
}

// Record is implemented by every owned entity.
type Record interface {
	Band | GigLog | Schedule | Issue | InventoryItem
	RecordID() string
	OwnerID() string
}
