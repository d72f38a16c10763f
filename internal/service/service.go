package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"techcrew/internal/logger"
	"techcrew/internal/models"
	"techcrew/internal/session"
	"techcrew/internal/store"
	"techcrew/internal/utils"
)

// Feed is the change notification hub the services publish to.
type Feed interface {
	Publish(ctx context.Context, c models.Change)
	Subscribe(ctx context.Context, table string) <-chan models.Change
}

var ErrNoFeed = errors.New("change feed not configured")

type Deps struct {
	DB    *bun.DB
	Feed  Feed
	Log   *logger.Logger
	Now   func() time.Time
	NewID func() string
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return utils.NewID()
}

func (d Deps) publish(ctx context.Context, table string, op models.ChangeOp, id, actor string) {
	if d.Feed == nil {
		return
	}
	d.Feed.Publish(ctx, models.Change{Table: table, Op: op, ID: id, ActorID: actor, At: d.now()})
}

// filterColumns names the columns a ListQuery field maps to. Empty means
// the filter is not supported for the entity.
type filterColumns struct {
	owner  string
	date   string
	band   string
	status string
}

// entity holds the behaviour every owned record shares.
type entity[T models.Record] struct {
	deps    Deps
	table   string
	store   *store.Store[T]
	columns filterColumns
	order   []string
}

func newEntity[T models.Record](deps Deps, table string, cols filterColumns, order []string, relations ...string) *entity[T] {
	return &entity[T]{
		deps:    deps,
		table:   table,
		store:   store.New[T](deps.DB, relations...),
		columns: cols,
		order:   order,
	}
}

func unsupported(field, table string) error {
	return &models.FieldError{Field: field, Reason: "is not a filter for " + table}
}

func (e *entity[T]) filter(q models.ListQuery) (store.QueryFunc, error) {
	c := e.columns
	switch {
	case q.OwnerID != "" && c.owner == "":
		return nil, unsupported("owner", e.table)
	case (q.From != "" || q.To != "") && c.date == "":
		return nil, unsupported("from/to", e.table)
	case q.BandID != "" && c.band == "":
		return nil, unsupported("band_id", e.table)
	case len(q.Status) > 0 && c.status == "":
		return nil, unsupported("status", e.table)
	}

	return func(sq *bun.SelectQuery) *bun.SelectQuery {
		if q.OwnerID != "" {
			sq = sq.Where("?TableAlias.? = ?", bun.Ident(c.owner), q.OwnerID)
		}
		if q.From != "" {
			sq = sq.Where("?TableAlias.? >= ?", bun.Ident(c.date), q.From)
		}
		if q.To != "" {
			sq = sq.Where("?TableAlias.? <= ?", bun.Ident(c.date), q.To)
		}
		if q.BandID != "" {
			sq = sq.Where("?TableAlias.? = ?", bun.Ident(c.band), q.BandID)
		}
		if len(q.Status) > 0 {
			sq = sq.Where("?TableAlias.? IN (?)", bun.Ident(c.status), bun.In(q.Status))
		}
		for _, o := range e.order {
			sq = sq.OrderExpr(o)
		}
		if q.Limit > 0 {
			sq = sq.Limit(q.Limit)
		}
		return sq
	}, nil
}

func (e *entity[T]) List(ctx context.Context, q models.ListQuery) ([]T, error) {
	fn, err := e.filter(q)
	if err != nil {
		return nil, err
	}
	return e.store.List(ctx, fn)
}

func (e *entity[T]) Get(ctx context.Context, id string) (*T, error) {
	return e.store.Get(ctx, id)
}

func (e *entity[T]) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	if e.deps.Feed == nil {
		return nil, ErrNoFeed
	}
	return e.deps.Feed.Subscribe(ctx, e.table), nil
}

// authorize loads id and checks the session owns it.
func (e *entity[T]) authorize(ctx context.Context, id string) (*T, session.Session, error) {
	s, err := session.Require(ctx)
	if err != nil {
		return nil, s, err
	}
	row, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, s, err
	}
	if !s.Owns((*row).OwnerID()) {
		e.deps.Log.LogSecurity("FORBIDDEN", fmt.Sprintf("%s tried to modify %s %s", s.UserID, e.table, id))
		return nil, s, fmt.Errorf("%s %s: %w", e.table, id, models.ErrForbidden)
	}
	return row, s, nil
}

// insert stores row, announces it and reloads it with its relations.
func (e *entity[T]) insert(ctx context.Context, s session.Session, row *T) (*T, error) {
	if err := e.store.Insert(ctx, row); err != nil {
		return nil, err
	}
	id := (*row).RecordID()
	e.deps.publish(ctx, e.table, models.OpInsert, id, s.UserID)
	return e.store.Get(ctx, id)
}

// update applies the submitted fields to an owned row. apply returns the
// columns it changed; updated_at is always written.
func (e *entity[T]) update(ctx context.Context, id string, apply func(ctx context.Context, row *T, now time.Time) ([]string, error)) (*T, error) {
	row, s, err := e.authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	cols, err := apply(ctx, row, e.deps.now())
	if err != nil {
		return nil, err
	}
	if err := e.store.Update(ctx, row, append(cols, "updated_at")...); err != nil {
		return nil, err
	}
	e.deps.publish(ctx, e.table, models.OpUpdate, id, s.UserID)
	return e.store.Get(ctx, id)
}

func (e *entity[T]) Remove(ctx context.Context, id string) error {
	_, s, err := e.authorize(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	e.deps.publish(ctx, e.table, models.OpDelete, id, s.UserID)
	return nil
}

func (d Deps) bandExists(ctx context.Context, id string) error {
	ok, err := store.New[models.Band](d.DB).Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &models.FieldError{Field: "band_id", Reason: "does not match a band"}
	}
	return nil
}

// setText is set for text fields, trimming surrounding space.
func setText(cols []string, col string, dst *string, src *string) []string {
	if src == nil {
		return cols
	}
	*dst = strings.TrimSpace(*src)
	return append(cols, col)
}

// set copies *src into *dst when submitted and records col.
func set[V any](cols []string, col string, dst *V, src *V) []string {
	if src == nil {
		return cols
	}
	*dst = *src
	return append(cols, col)
}
