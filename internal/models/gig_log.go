package models

import (
	"time"

	"github.com/uptrace/bun"
)

type GigLog struct {
	bun.BaseModel `bun:"table:gig_logs,alias:gig_log"`

	ID        string    `bun:"id,pk" json:"id"`
	Date      Date      `bun:"date,notnull" json:"date"`
	BandID    string    `bun:"band_id,notnull" json:"band_id"`
	Venue     string    `bun:"venue,notnull" json:"venue"`
	Notes     string    `bun:"notes,nullzero" json:"notes,omitempty"`
	TechID    string    `bun:"tech_id,notnull" json:"tech_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`

	Band *Band `bun:"rel:belongs-to,join:band_id=id" json:"band,omitempty"`
}

func (g GigLog) RecordID() string { return g.ID }
func (g GigLog) OwnerID() string  { return g.TechID }

func (g GigLog) BandName() string {
	if g.Band == nil {
		return ""
	}
	return g.Band.Name
}

type GigLogInput struct {
	Date   *Date   `json:"date,omitempty"`
	BandID *string `json:"band_id,omitempty"`
	Venue  *string `json:"venue,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (in GigLogInput) Validate(create bool) error {
	if err := requireDate("date", in.Date, create); err != nil {
		return err
	}
	if err := requireText("band_id", in.BandID, create); err != nil {
		return err
	}
	return requireText("venue", in.Venue, create)
}

func requireDate(field string, v *Date, create bool) error {
	if v == nil {
		if create {
			return required(field)
		}
		return nil
	}
	if *v == "" {
		return required(field)
	}
	if _, err := ParseDate(string(*v)); err != nil {
		return invalid(field, err.Error())
	}
	return nil
}
