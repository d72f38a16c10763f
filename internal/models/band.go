package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Band struct {
	bun.BaseModel `bun:"table:bands,alias:band"`

	ID           string    `bun:"id,pk" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	HomeLocation string    `bun:"home_location,notnull" json:"home_location"`
	Members      int       `bun:"members,notnull" json:"members"`
	LastPlayed   Date      `bun:"last_played,nullzero" json:"last_played,omitempty"`
	Notes        string    `bun:"notes,nullzero" json:"notes,omitempty"`
	InputLists   string    `bun:"input_lists,nullzero" json:"input_lists,omitempty"`
	CreatedBy    string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

func (b Band) RecordID() string { return b.ID }
func (b Band) OwnerID() string  { return b.CreatedBy }

// BandInput carries submitted band fields; nil means "not submitted".
type BandInput struct {
	Name         *string `json:"name,omitempty"`
	HomeLocation *string `json:"home_location,omitempty"`
	Members      *int    `json:"members,omitempty"`
	LastPlayed   *Date   `json:"last_played,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	InputLists   *string `json:"input_lists,omitempty"`
}

func (in BandInput) Validate(create bool) error {
	if err := requireText("name", in.Name, create); err != nil {
		return err
	}
	if err := requireText("home_location", in.HomeLocation, create); err != nil {
		return err
	}
	if in.Members == nil {
		if create {
			return required("members")
		}
	} else if *in.Members < 1 {
		return invalid("members", "must be at least 1")
	}
	if in.LastPlayed != nil && *in.LastPlayed != "" {
		if _, err := ParseDate(string(*in.LastPlayed)); err != nil {
			return invalid("last_played", err.Error())
		}
	}
	return nil
}

// requireText fails when a required text field is missing on create or
// submitted blank on either path.
func requireText(field string, v *string, create bool) error {
	if v == nil {
		if create {
			return required(field)
		}
		return nil
	}
	if strings.TrimSpace(*v) == "" {
		return required(field)
	}
	return nil
}
