package service

import (
	"context"
	"strings"
	"time"

	"techcrew/internal/models"
	"techcrew/internal/session"
)

type GigLogs struct {
	*entity[models.GigLog]
}

func NewGigLogs(deps Deps) *GigLogs {
	return &GigLogs{newEntity[models.GigLog](deps, models.TableGigLogs,
		filterColumns{owner: "tech_id", date: "date", band: "band_id"},
		[]string{"?TableAlias.date DESC", "?TableAlias.created_at DESC"},
		"Band",
	)}
}

func (g *GigLogs) Create(ctx context.Context, in models.GigLogInput) (*models.GigLog, error) {
	s, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	if err := g.deps.bandExists(ctx, *in.BandID); err != nil {
		return nil, err
	}
	now := g.deps.now()
	row := &models.GigLog{
		ID:        g.deps.newID(),
		Date:      *in.Date,
		BandID:    *in.BandID,
		Venue:     strings.TrimSpace(*in.Venue),
		TechID:    s.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Notes != nil {
		row.Notes = *in.Notes
	}
	return g.insert(ctx, s, row)
}

func (g *GigLogs) Update(ctx context.Context, id string, in models.GigLogInput) (*models.GigLog, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	return g.update(ctx, id, func(ctx context.Context, row *models.GigLog, now time.Time) ([]string, error) {
		if in.BandID != nil && *in.BandID != row.BandID {
			if err := g.deps.bandExists(ctx, *in.BandID); err != nil {
				return nil, err
			}
		}
		var cols []string
		cols = set(cols, "date", &row.Date, in.Date)
		cols = set(cols, "band_id", &row.BandID, in.BandID)
		cols = setText(cols, "venue", &row.Venue, in.Venue)
		cols = set(cols, "notes", &row.Notes, in.Notes)
		row.UpdatedAt = now
		return cols, nil
	})
}
