package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"techcrew/internal/models"
	"techcrew/internal/session"
)

type Bands struct {
	*entity[models.Band]
}

func NewBands(deps Deps) *Bands {
	return &Bands{newEntity[models.Band](deps, models.TableBands,
		filterColumns{owner: "created_by", date: "last_played"},
		[]string{"?TableAlias.name ASC"},
	)}
}

func (b *Bands) Create(ctx context.Context, in models.BandInput) (*models.Band, error) {
	s, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	now := b.deps.now()
	row := &models.Band{
		ID:           b.deps.newID(),
		Name:         strings.TrimSpace(*in.Name),
		HomeLocation: strings.TrimSpace(*in.HomeLocation),
		Members:      *in.Members,
		CreatedBy:    s.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyBandOptional(row, in)
	return b.insert(ctx, s, row)
}

func applyBandOptional(row *models.Band, in models.BandInput) []string {
	var cols []string
	cols = set(cols, "last_played", &row.LastPlayed, in.LastPlayed)
	cols = set(cols, "notes", &row.Notes, in.Notes)
	cols = set(cols, "input_lists", &row.InputLists, in.InputLists)
	return cols
}

func (b *Bands) Update(ctx context.Context, id string, in models.BandInput) (*models.Band, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	return b.update(ctx, id, func(_ context.Context, row *models.Band, now time.Time) ([]string, error) {
		var cols []string
		cols = setText(cols, "name", &row.Name, in.Name)
		cols = setText(cols, "home_location", &row.HomeLocation, in.HomeLocation)
		cols = set(cols, "members", &row.Members, in.Members)
		cols = append(cols, applyBandOptional(row, in)...)
		row.UpdatedAt = now
		return cols, nil
	})
}

// Remove deletes the band with its gig logs. Gig logs other techs wrote
// against the band block the delete. Schedules that linked the band keep
// its name as a free-text override.
func (b *Bands) Remove(ctx context.Context, id string) error {
	row, s, err := b.authorize(ctx, id)
	if err != nil {
		return err
	}

	now := b.deps.now()
	var gigIDs, scheduleIDs []string
	err = b.deps.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		foreign, err := tx.NewSelect().Model((*models.GigLog)(nil)).
			Where("band_id = ?", id).
			Where("tech_id <> ?", s.UserID).
			Count(ctx)
		if err != nil {
			return err
		}
		if foreign > 0 {
			return fmt.Errorf("band %s has %d gig logs by other techs: %w", id, foreign, models.ErrConflict)
		}
		if err := tx.NewSelect().Model((*models.GigLog)(nil)).Column("id").Where("band_id = ?", id).Scan(ctx, &gigIDs); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.GigLog)(nil)).Where("band_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if err := tx.NewSelect().Model((*models.Schedule)(nil)).Column("id").Where("band_id = ?", id).Scan(ctx, &scheduleIDs); err != nil {
			return err
		}
		_, err = tx.NewUpdate().Model((*models.Schedule)(nil)).
			Set("band_id = NULL").
			Set("band_name = ?", row.Name).
			Set("updated_at = ?", now).
			Where("band_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		return b.store.With(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, gid := range gigIDs {
		b.deps.publish(ctx, models.TableGigLogs, models.OpDelete, gid, s.UserID)
	}
	for _, sid := range scheduleIDs {
		b.deps.publish(ctx, models.TableSchedules, models.OpUpdate, sid, s.UserID)
	}
	b.deps.publish(ctx, models.TableBands, models.OpDelete, id, s.UserID)
	return nil
}
