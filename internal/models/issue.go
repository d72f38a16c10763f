package models

import (
	"time"

	"github.com/uptrace/bun"
)

type IssueStatus string

const (
	StatusOpen       IssueStatus = "open"
	StatusInProgress IssueStatus = "in_progress"
	StatusClosed     IssueStatus = "closed"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Toggled flips between closed and open; in-progress issues close.
func (s IssueStatus) Toggled() IssueStatus {
	if s == StatusClosed {
		return StatusOpen
	}
	return StatusClosed
}

type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
)

func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Issue struct {
	bun.BaseModel `bun:"table:issues,alias:issue"`

	ID          string        `bun:"id,pk" json:"id"`
	Title       string        `bun:"title,notnull" json:"title"`
	Description string        `bun:"description,notnull" json:"description"`
	Status      IssueStatus   `bun:"status,notnull" json:"status"`
	Priority    IssuePriority `bun:"priority,notnull" json:"priority"`
	Notes       string        `bun:"notes,nullzero" json:"notes,omitempty"`
	AssignedTo  string        `bun:"assigned_to,nullzero" json:"assigned_to,omitempty"`
	ReportedBy  string        `bun:"reported_by,notnull" json:"reported_by"`
	CreatedAt   time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time     `bun:"updated_at,notnull" json:"updated_at"`
	ClosedAt    *time.Time    `bun:"closed_at,nullzero" json:"closed_at,omitempty"`

	Reporter *User `bun:"rel:belongs-to,join:reported_by=id" json:"reporter,omitempty"`
}

func (i Issue) RecordID() string { return i.ID }
func (i Issue) OwnerID() string  { return i.ReportedBy }

func (i Issue) ReporterName() string {
	if i.Reporter == nil {
		return ""
	}
	if i.Reporter.FullName != "" {
		return i.Reporter.FullName
	}
	return i.Reporter.Email
}

type IssueInput struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *IssueStatus   `json:"status,omitempty"`
	Priority    *IssuePriority `json:"priority,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	AssignedTo  *string        `json:"assigned_to,omitempty"`
}

func (in IssueInput) Validate(create bool) error {
	if err := requireText("title", in.Title, create); err != nil {
		return err
	}
	if err := requireText("description", in.Description, create); err != nil {
		return err
	}
	if in.Status != nil && !in.Status.Valid() {
		return invalid("status", "must be open, in_progress or closed")
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return invalid("priority", "must be low, medium or high")
	}
	return nil
}
