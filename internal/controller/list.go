// Package controller holds the presentation-independent state of the
// entity lists: loading, the overlay view state and form submission.
package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"techcrew/internal/logger"
	"techcrew/internal/models"
	"techcrew/internal/repo"
	"techcrew/internal/session"
)

var ErrNoSelection = errors.New("no record selected")

type ListState[T any] struct {
	Records []T
	Loading bool
	Err     error
}

// Controller drives one entity list. It is safe for concurrent use so
// Watch can reload while the presentation reads.
type Controller[T models.Record, I any] struct {
	Name string

	repo    repo.Repository[T, I]
	session session.Session
	log     *logger.Logger

	mu      sync.RWMutex
	query   models.ListQuery
	state   ListState[T]
	view    ViewState
	notify  func()
	matches func(q models.ListQuery, row T) bool
}

func New[T models.Record, I any](name string, r repo.Repository[T, I], s session.Session, log *logger.Logger) *Controller[T, I] {
	return &Controller[T, I]{Name: name, repo: r, session: s, log: log}
}

// OnChange registers fn to run after every state change.
func (c *Controller[T, I]) OnChange(fn func()) {
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
}

func (c *Controller[T, I]) changed() {
	c.mu.RLock()
	fn := c.notify
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (c *Controller[T, I]) SetQuery(q models.ListQuery) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *Controller[T, I]) Query() models.ListQuery {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

func (c *Controller[T, I]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state.Loading = true
	q := c.query
	c.mu.Unlock()
	c.changed()

	rows, err := c.repo.List(ctx, q)

	c.mu.Lock()
	c.state.Loading = false
	if err != nil {
		c.state.Err = err
	} else {
		c.state = ListState[T]{Records: rows}
	}
	c.mu.Unlock()
	c.changed()

	if err != nil {
		c.log.Error("CONTROLLER", fmt.Sprintf("Loading %s failed: %v", c.Name, err))
	}
	return err
}

// State returns a snapshot of the list.
func (c *Controller[T, I]) State() ListState[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ListState[T]{Records: slices.Clone(c.state.Records), Loading: c.state.Loading, Err: c.state.Err}
}

// Empty reports a successful load that returned nothing.
func (c *Controller[T, I]) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.state.Loading && c.state.Err == nil && c.state.Records != nil && len(c.state.Records) == 0
}

func (c *Controller[T, I]) View() ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

func (c *Controller[T, I]) Session() session.Session {
	return c.session
}

// CanModify reports whether the session owns row.
func (c *Controller[T, I]) CanModify(row T) bool {
	return c.session.Owns(row.OwnerID())
}

func (c *Controller[T, I]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return c.state.Records[i], true
}

func (c *Controller[T, I]) indexOf(id string) int {
	return slices.IndexFunc(c.state.Records, func(r T) bool { return r.RecordID() == id })
}

func (c *Controller[T, I]) setView(v ViewState) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
	c.changed()
}

func (c *Controller[T, I]) OpenCreate() {
	c.setView(createView())
}

// openOwned opens kind for id when the session may modify the record.
func (c *Controller[T, I]) openOwned(kind ViewKind, id string) error {
	row, ok := c.Find(id)
	if !ok {
		return fmt.Errorf("%s %s: %w", c.Name, id, models.ErrNotFound)
	}
	if !c.CanModify(row) {
		return fmt.Errorf("%s %s: %w", c.Name, id, models.ErrForbidden)
	}
	c.setView(recordView(kind, id))
	return nil
}

func (c *Controller[T, I]) OpenEdit(id string) error {
	return c.openOwned(ViewEdit, id)
}

func (c *Controller[T, I]) OpenDelete(id string) error {
	return c.openOwned(ViewDelete, id)
}

func (c *Controller[T, I]) OpenDetail(id string) error {
	if _, ok := c.Find(id); !ok {
		return fmt.Errorf("%s %s: %w", c.Name, id, models.ErrNotFound)
	}
	c.setView(recordView(ViewDetail, id))
	return nil
}

func (c *Controller[T, I]) Close() {
	c.setView(ViewState{})
}

// Editing returns the record behind an edit view.
func (c *Controller[T, I]) Editing() (T, bool) {
	v := c.View()
	if v.Kind != ViewEdit {
		var zero T
		return zero, false
	}
	return c.Find(v.RecordID)
}

// ConfirmDelete removes the record behind a delete view.
func (c *Controller[T, I]) ConfirmDelete(ctx context.Context) error {
	v := c.View()
	if v.Kind != ViewDelete {
		return ErrNoSelection
	}
	if err := c.repo.Remove(ctx, v.RecordID); err != nil {
		c.fail("delete", err)
		return err
	}

	c.mu.Lock()
	if i := c.indexOf(v.RecordID); i >= 0 {
		c.state.Records = slices.Delete(c.state.Records, i, i+1)
	}
	c.mu.Unlock()
	c.setView(feedbackView(true, c.Name+" deleted"))
	return nil
}

// Submit creates or updates depending on the open view.
func (c *Controller[T, I]) Submit(ctx context.Context, in I) error {
	v := c.View()
	var (
		row *T
		err error
		msg string
	)
	switch v.Kind {
	case ViewCreate:
		row, err = c.repo.Create(ctx, in)
		msg = c.Name + " created"
	case ViewEdit:
		row, err = c.repo.Update(ctx, v.RecordID, in)
		msg = c.Name + " updated"
	default:
		return ErrNoSelection
	}
	if err != nil {
		c.fail(v.Kind.String(), err)
		return err
	}
	c.upsert(*row)
	c.setView(feedbackView(true, msg))
	return nil
}

// upsert replaces the record in local state or prepends a new one. A row
// that no longer fits the current query is dropped instead.
func (c *Controller[T, I]) upsert(row T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(row.RecordID())
	switch {
	case c.matches != nil && !c.matches(c.query, row):
		if i >= 0 {
			c.state.Records = slices.Delete(c.state.Records, i, i+1)
		}
	case i >= 0:
		c.state.Records[i] = row
	default:
		c.state.Records = append([]T{row}, c.state.Records...)
	}
}

func (c *Controller[T, I]) fail(action string, err error) {
	c.log.Warn("CONTROLLER", fmt.Sprintf("%s %s failed: %v", c.Name, action, err))
	c.setView(feedbackView(false, err.Error()))
}

// Watch reloads the list on every change to the entity until ctx is done
// or the stream ends.
func (c *Controller[T, I]) Watch(ctx context.Context) error {
	changes, err := c.repo.Subscribe(ctx)
	if err != nil {
		return err
	}
	for range changes {
		_ = c.Load(ctx)
	}
	return nil
}
