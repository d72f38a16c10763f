package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Schedule struct {
	bun.BaseModel `bun:"table:schedules,alias:schedule"`

	ID        string    `bun:"id,pk" json:"id"`
	Date      Date      `bun:"date,notnull" json:"date"`
	ShowTime  string    `bun:"show_time,notnull" json:"show_time"`
	BandID    string    `bun:"band_id,nullzero" json:"band_id,omitempty"`
	BandName  string    `bun:"band_name,nullzero" json:"band_name,omitempty"`
	TechID    string    `bun:"tech_id,notnull" json:"tech_id"`
	TechName  string    `bun:"tech_name,nullzero" json:"tech_name,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`

	Band *Band `bun:"rel:belongs-to,join:band_id=id" json:"band,omitempty"`
}

func (s Schedule) RecordID() string { return s.ID }
func (s Schedule) OwnerID() string  { return s.TechID }

// DisplayBand prefers the free-text override over the linked band.
func (s Schedule) DisplayBand() string {
	if s.BandName != "" {
		return s.BandName
	}
	if s.Band != nil {
		return s.Band.Name
	}
	return ""
}

// ScheduleInput links a band by id or names it free-text; setting one
// clears the other.
type ScheduleInput struct {
	Date     *Date   `json:"date,omitempty"`
	ShowTime *string `json:"show_time,omitempty"`
	BandID   *string `json:"band_id,omitempty"`
	BandName *string `json:"band_name,omitempty"`
	TechName *string `json:"tech_name,omitempty"`
}

func (in ScheduleInput) Validate(create bool) error {
	if err := requireDate("date", in.Date, create); err != nil {
		return err
	}
	if in.ShowTime == nil {
		if create {
			return required("show_time")
		}
	} else if !ValidShowTime(*in.ShowTime) {
		return invalid("show_time", "must look like HH:MM")
	}

	hasID := in.BandID != nil && *in.BandID != ""
	hasName := in.BandName != nil && *in.BandName != ""
	switch {
	case hasID && hasName:
		return invalid("band", "set either band_id or band_name, not both")
	case create && !hasID && !hasName:
		return required("band")
	}
	return nil
}
