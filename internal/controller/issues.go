package controller

import (
	"context"
	"fmt"
	"slices"

	"techcrew/internal/logger"
	"techcrew/internal/models"
	"techcrew/internal/repo"
	"techcrew/internal/session"
)

// IssueController adds the status toggle to the issue list. It watches
// for changes by default.
type IssueController struct {
	*Controller[models.Issue, models.IssueInput]
	issues repo.IssueRepository
}

func NewIssues(r repo.IssueRepository, s session.Session, log *logger.Logger) *IssueController {
	ctrl := New[models.Issue, models.IssueInput]("issue", r, s, log)
	ctrl.matches = func(q models.ListQuery, row models.Issue) bool {
		return q.HasStatus(row.Status)
	}
	return &IssueController{Controller: ctrl, issues: r}
}

// IssueFilter is a preset status filter for the issue list.
type IssueFilter int

const (
	FilterAll IssueFilter = iota
	FilterOpen
	FilterClosed
)

func (f IssueFilter) String() string {
	switch f {
	case FilterOpen:
		return "open"
	case FilterClosed:
		return "closed"
	}
	return "all"
}

// Statuses returns the status values the filter lists.
func (f IssueFilter) Statuses() []string {
	switch f {
	case FilterOpen:
		return []string{string(models.StatusOpen), string(models.StatusInProgress)}
	case FilterClosed:
		return []string{string(models.StatusClosed)}
	}
	return nil
}

func (f IssueFilter) next() IssueFilter {
	return (f + 1) % 3
}

// Filter reports the preset matching the current query.
func (c *IssueController) Filter() IssueFilter {
	status := c.Query().Status
	for _, f := range []IssueFilter{FilterOpen, FilterClosed} {
		if slices.Equal(status, f.Statuses()) {
			return f
		}
	}
	return FilterAll
}

// SetFilter narrows the list to f and reloads it.
func (c *IssueController) SetFilter(ctx context.Context, f IssueFilter) error {
	q := c.Query()
	q.Status = f.Statuses()
	c.SetQuery(q)
	return c.Load(ctx)
}

// CycleFilter steps through all, open and closed.
func (c *IssueController) CycleFilter(ctx context.Context) error {
	return c.SetFilter(ctx, c.Filter().next())
}

func (c *IssueController) WatchByDefault() bool { return true }

// ToggleStatus flips an owned issue between open and closed.
func (c *IssueController) ToggleStatus(ctx context.Context, id string) error {
	row, ok := c.Find(id)
	if !ok {
		return fmt.Errorf("issue %s: %w", id, models.ErrNotFound)
	}
	if !c.CanModify(row) {
		return fmt.Errorf("issue %s: %w", id, models.ErrForbidden)
	}
	updated, err := c.issues.ToggleStatus(ctx, id)
	if err != nil {
		c.fail("toggle", err)
		return err
	}
	c.upsert(*updated)
	c.changed()
	return nil
}
