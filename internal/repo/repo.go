// Package repo defines the typed data access contract shared by the
// server-side services and the HTTP gateway client.
package repo

import (
	"context"

	"techcrew/internal/models"
)

// Repository is implemented once per entity on each side of the wire.
type Repository[T models.Record, I any] interface {
	List(ctx context.Context, q models.ListQuery) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, in I) (*T, error)
	Update(ctx context.Context, id string, in I) (*T, error)
	Remove(ctx context.Context, id string) error
	// Subscribe streams change notifications for the entity's table until
	// ctx is done.
	Subscribe(ctx context.Context) (<-chan models.Change, error)
}

type (
	Bands     = Repository[models.Band, models.BandInput]
	GigLogs   = Repository[models.GigLog, models.GigLogInput]
	Schedules = Repository[models.Schedule, models.ScheduleInput]
	Issues    = Repository[models.Issue, models.IssueInput]
	Inventory = Repository[models.InventoryItem, models.InventoryItemInput]
)

// IssueRepository adds the status toggle.
type IssueRepository interface {
	Issues
	ToggleStatus(ctx context.Context, id string) (*models.Issue, error)
}

// InventoryRepository adds category lookups.
type InventoryRepository interface {
	Inventory
	Categories(ctx context.Context) ([]models.InventoryCategory, error)
	Overview(ctx context.Context) ([]models.CategoryTotal, error)
}

// Dashboard is the landing summary.
type Dashboard struct {
	RecentIssues      []models.Issue         `json:"recent_issues"`
	RecentGigLogs     []models.GigLog        `json:"recent_gig_logs"`
	UpcomingSchedules []models.Schedule      `json:"upcoming_schedules"`
	Inventory         []models.CategoryTotal `json:"inventory"`
}
