package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"techcrew/internal/gateway"
	"techcrew/internal/models"
)

// Entities are the names FetchTable accepts.
var Entities = []string{"bands", "gig-logs", "schedules", "issues", "inventory"}

// FetchTable lists one entity through the client and renders the rows as
// a bordered table.
func FetchTable(ctx context.Context, c *gateway.Client, entity string, q models.ListQuery) (string, int, error) {
	switch entity {
	case "bands":
		return fetch[models.Band](ctx, c.Bands, q, bandColumns)
	case "gig-logs":
		return fetch[models.GigLog](ctx, c.GigLogs, q, gigLogColumns)
	case "schedules":
		return fetch[models.Schedule](ctx, c.Schedules, q, scheduleColumns)
	case "issues":
		return fetch[models.Issue](ctx, c.Issues, q, issueColumns)
	case "inventory":
		return fetch[models.InventoryItem](ctx, c.Inventory, q, inventoryColumns)
	}
	return "", 0, fmt.Errorf("unknown entity %q (want one of %v)", entity, Entities)
}

type lister[T any] interface {
	List(ctx context.Context, q models.ListQuery) ([]T, error)
}

func fetch[T any](ctx context.Context, r lister[T], q models.ListQuery, cols []column[T]) (string, int, error) {
	rows, err := r.List(ctx, q)
	if err != nil {
		return "", 0, err
	}
	return renderTable(cols, rows), len(rows), nil
}

func renderTable[T any](cols []column[T], rows []T) string {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Title
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return labelStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.Value(r)
		}
		t.Row(cells...)
	}
	return t.Render()
}
