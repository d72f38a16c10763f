package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/uptrace/bun"

	"techcrew/internal/models"
)

// QueryFunc narrows or orders a list query.
type QueryFunc func(*bun.SelectQuery) *bun.SelectQuery

// Store is generic row access for one bun model. Relations are joined on
// every read.
type Store[T any] struct {
	db        bun.IDB
	name      string
	relations []string
}

func New[T any](db bun.IDB, relations ...string) *Store[T] {
	return &Store[T]{db: db, name: reflect.TypeFor[T]().Name(), relations: relations}
}

// With returns a copy bound to db, typically a transaction.
func (s *Store[T]) With(db bun.IDB) *Store[T] {
	return &Store[T]{db: db, name: s.name, relations: s.relations}
}

func (s *Store[T]) selectQuery(model any) *bun.SelectQuery {
	q := s.db.NewSelect().Model(model)
	for _, rel := range s.relations {
		q = q.Relation(rel)
	}
	return q
}

func (s *Store[T]) List(ctx context.Context, fns ...QueryFunc) ([]T, error) {
	rows := make([]T, 0)
	q := s.selectQuery(&rows)
	for _, fn := range fns {
		q = fn(q)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}
	return rows, nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (*T, error) {
	row := new(T)
	err := s.selectQuery(row).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", s.name, id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", s.name, id, err)
	}
	return row, nil
}

func (s *Store[T]) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := s.db.NewSelect().Model((*T)(nil)).Where("?TableAlias.id = ?", id).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check %s %s: %w", s.name, id, err)
	}
	return ok, nil
}

func (s *Store[T]) Insert(ctx context.Context, row *T) error {
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert %s: %w", s.name, err)
	}
	return nil
}

// Update writes only cols of row, matched by primary key.
func (s *Store[T]) Update(ctx context.Context, row *T, cols ...string) error {
	res, err := s.db.NewUpdate().Model(row).Column(cols...).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.name, err)
	}
	return affected(res, s.name)
}

func (s *Store[T]) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.name, id, err)
	}
	return affected(res, s.name)
}

func affected(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", name, models.ErrNotFound)
	}
	return nil
}
