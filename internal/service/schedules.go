package service

import (
	"context"
	"strings"
	"time"

	"techcrew/internal/models"
	"techcrew/internal/session"
)

type Schedules struct {
	*entity[models.Schedule]
}

func NewSchedules(deps Deps) *Schedules {
	return &Schedules{newEntity[models.Schedule](deps, models.TableSchedules,
		filterColumns{owner: "tech_id", date: "date", band: "band_id"},
		[]string{"?TableAlias.date ASC", "?TableAlias.show_time ASC"},
		"Band",
	)}
}

func (sc *Schedules) Create(ctx context.Context, in models.ScheduleInput) (*models.Schedule, error) {
	s, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	now := sc.deps.now()
	row := &models.Schedule{
		ID:        sc.deps.newID(),
		Date:      *in.Date,
		ShowTime:  *in.ShowTime,
		TechID:    s.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := sc.applyBand(ctx, row, in); err != nil {
		return nil, err
	}
	if in.TechName != nil {
		row.TechName = strings.TrimSpace(*in.TechName)
	} else {
		row.TechName = s.DisplayName()
	}
	return sc.insert(ctx, s, row)
}

// applyBand links a band or sets the free-text name. Choosing one clears
// the other.
func (sc *Schedules) applyBand(ctx context.Context, row *models.Schedule, in models.ScheduleInput) ([]string, error) {
	switch {
	case in.BandID != nil && *in.BandID != "":
		if *in.BandID != row.BandID {
			if err := sc.deps.bandExists(ctx, *in.BandID); err != nil {
				return nil, err
			}
		}
		row.BandID = *in.BandID
		row.BandName = ""
		return []string{"band_id", "band_name"}, nil
	case in.BandName != nil && strings.TrimSpace(*in.BandName) != "":
		row.BandName = strings.TrimSpace(*in.BandName)
		row.BandID = ""
		return []string{"band_id", "band_name"}, nil
	}
	return nil, nil
}

func (sc *Schedules) Update(ctx context.Context, id string, in models.ScheduleInput) (*models.Schedule, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	return sc.update(ctx, id, func(ctx context.Context, row *models.Schedule, now time.Time) ([]string, error) {
		cols, err := sc.applyBand(ctx, row, in)
		if err != nil {
			return nil, err
		}
		cols = set(cols, "date", &row.Date, in.Date)
		cols = set(cols, "show_time", &row.ShowTime, in.ShowTime)
		cols = setText(cols, "tech_name", &row.TechName, in.TechName)
		row.UpdatedAt = now
		return cols, nil
	})
}
