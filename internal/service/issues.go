package service

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"techcrew/internal/models"
	"techcrew/internal/session"
)

// priorityRank orders high before medium before low.
const priorityRank = "CASE ?TableAlias.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"

type Issues struct {
	*entity[models.Issue]
}

func NewIssues(deps Deps) *Issues {
	return &Issues{newEntity[models.Issue](deps, models.TableIssues,
		filterColumns{owner: "reported_by", status: "status"},
		[]string{"?TableAlias.created_at DESC"},
		"Reporter",
	)}
}

func (is *Issues) Create(ctx context.Context, in models.IssueInput) (*models.Issue, error) {
	s, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	now := is.deps.now()
	row := &models.Issue{
		ID:          is.deps.newID(),
		Title:       strings.TrimSpace(*in.Title),
		Description: strings.TrimSpace(*in.Description),
		Status:      models.StatusOpen,
		Priority:    models.PriorityMedium,
		ReportedBy:  s.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Priority != nil {
		row.Priority = *in.Priority
	}
	if in.Notes != nil {
		row.Notes = *in.Notes
	}
	if in.AssignedTo != nil {
		row.AssignedTo = strings.TrimSpace(*in.AssignedTo)
	}
	if in.Status != nil {
		setStatus(row, *in.Status, now)
	}
	return is.insert(ctx, s, row)
}

// setStatus keeps closed_at set exactly while the issue is closed.
func setStatus(row *models.Issue, status models.IssueStatus, now time.Time) {
	switch {
	case status == models.StatusClosed && row.ClosedAt == nil:
		row.ClosedAt = &now
	case status != models.StatusClosed:
		row.ClosedAt = nil
	}
	row.Status = status
}

func (is *Issues) Update(ctx context.Context, id string, in models.IssueInput) (*models.Issue, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	return is.update(ctx, id, func(_ context.Context, row *models.Issue, now time.Time) ([]string, error) {
		var cols []string
		cols = setText(cols, "title", &row.Title, in.Title)
		cols = setText(cols, "description", &row.Description, in.Description)
		cols = set(cols, "priority", &row.Priority, in.Priority)
		cols = set(cols, "notes", &row.Notes, in.Notes)
		cols = setText(cols, "assigned_to", &row.AssignedTo, in.AssignedTo)
		if in.Status != nil {
			setStatus(row, *in.Status, now)
			cols = append(cols, "status", "closed_at")
		}
		row.UpdatedAt = now
		return cols, nil
	})
}

// ToggleStatus closes an open or in-progress issue and reopens a closed
// one.
func (is *Issues) ToggleStatus(ctx context.Context, id string) (*models.Issue, error) {
	return is.update(ctx, id, func(_ context.Context, row *models.Issue, now time.Time) ([]string, error) {
		setStatus(row, row.Status.Toggled(), now)
		row.UpdatedAt = now
		return []string{"status", "closed_at"}, nil
	})
}

// Recent lists unresolved issues, most urgent first.
func (is *Issues) Recent(ctx context.Context, limit int) ([]models.Issue, error) {
	return is.store.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("?TableAlias.status IN (?)", bun.In([]models.IssueStatus{models.StatusOpen, models.StatusInProgress})).
			OrderExpr(priorityRank + " DESC").
			OrderExpr("?TableAlias.created_at DESC").
			Limit(limit)
	})
}
