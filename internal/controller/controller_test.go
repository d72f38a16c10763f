package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techcrew/internal/logger"
	"techcrew/internal/models"
	"techcrew/internal/session"
)

// issueRepo is an in-memory issue repository.
type issueRepo struct {
	mu      sync.Mutex
	rows    []models.Issue
	fail    error
	changes chan models.Change
	lists   int
}

func (r *issueRepo) List(ctx context.Context, q models.ListQuery) ([]models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.fail != nil {
		return nil, r.fail
	}
	out := []models.Issue{}
	for _, row := range r.rows {
		if q.HasStatus(row.Status) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *issueRepo) Get(ctx context.Context, id string) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			return &row, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *issueRepo) Create(ctx context.Context, in models.IssueInput) (*models.Issue, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row := models.Issue{ID: "new", Title: *in.Title, Description: *in.Description, Status: models.StatusOpen, ReportedBy: "u1"}
	r.rows = append(r.rows, row)
	return &row, nil
}

func (r *issueRepo) Update(ctx context.Context, id string, in models.IssueInput) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			if in.Title != nil {
				r.rows[i].Title = *in.Title
			}
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *issueRepo) Remove(ctx context.Context, id string) error {
	if r.fail != nil {
		return r.fail
	}
	return nil
}

func (r *issueRepo) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	return r.changes, nil
}

func (r *issueRepo) ToggleStatus(ctx context.Context, id string) (*models.Issue, error) {
	row, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Status = row.Status.Toggled()
	if row.Status == models.StatusClosed {
		now := time.Now()
		row.ClosedAt = &now
	}
	return row, nil
}

func newTestController() (*IssueController, *issueRepo) {
	r := &issueRepo{rows: []models.Issue{
		{ID: "i1", Title: "Hum", Status: models.StatusOpen, ReportedBy: "u1"},
		{ID: "i2", Title: "Buzz", Status: models.StatusOpen, ReportedBy: "u2"},
	}}
	return NewIssues(r, session.Session{UserID: "u1"}, logger.Discard()), r
}

func TestLoadStates(t *testing.T) {
	c, r := newTestController()
	assert.False(t, c.Empty())

	require.NoError(t, c.Load(context.Background()))
	st := c.State()
	assert.Len(t, st.Records, 2)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)

	r.rows = nil
	require.NoError(t, c.Load(context.Background()))
	assert.True(t, c.Empty())

	r.fail = errors.New("backend down")
	assert.Error(t, c.Load(context.Background()))
	assert.EqualError(t, c.State().Err, "backend down")
	assert.False(t, c.Empty())
}

func TestOwnerOnlyViews(t *testing.T) {
	c, _ := newTestController()
	require.NoError(t, c.Load(context.Background()))

	i1, _ := c.Find("i1")
	i2, _ := c.Find("i2")
	assert.True(t, c.CanModify(i1))
	assert.False(t, c.CanModify(i2))

	assert.ErrorIs(t, c.OpenEdit("i2"), models.ErrForbidden)
	assert.ErrorIs(t, c.OpenDelete("i2"), models.ErrForbidden)
	assert.Equal(t, ViewNone, c.View().Kind)

	require.NoError(t, c.OpenDetail("i2"))
	assert.Equal(t, ViewState{Kind: ViewDetail, RecordID: "i2"}, c.View())

	require.NoError(t, c.OpenEdit("i1"))
	assert.Equal(t, ViewState{Kind: ViewEdit, RecordID: "i1"}, c.View())
	row, ok := c.Editing()
	require.True(t, ok)
	assert.Equal(t, "Hum", row.Title)

	c.Close()
	assert.False(t, c.View().Open())
	assert.ErrorIs(t, c.OpenDetail("missing"), models.ErrNotFound)
}

func TestSubmit(t *testing.T) {
	c, _ := newTestController()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	assert.ErrorIs(t, c.Submit(ctx, models.IssueInput{}), ErrNoSelection)

	c.OpenCreate()
	err := c.Submit(ctx, models.IssueInput{Title: models.Ptr("x")})
	require.ErrorIs(t, err, models.ErrValidation)
	v := c.View()
	require.Equal(t, ViewFeedback, v.Kind)
	assert.False(t, v.Feedback.Success)
	assert.Contains(t, v.Feedback.Message, "description")

	c.OpenCreate()
	require.NoError(t, c.Submit(ctx, models.IssueInput{Title: models.Ptr("New"), Description: models.Ptr("d")}))
	assert.True(t, c.View().Feedback.Success)
	assert.Len(t, c.State().Records, 3)
	assert.Equal(t, "new", c.State().Records[0].ID)

	require.NoError(t, c.OpenEdit("i1"))
	require.NoError(t, c.Submit(ctx, models.IssueInput{Title: models.Ptr("Hum fixed")}))
	row, _ := c.Find("i1")
	assert.Equal(t, "Hum fixed", row.Title)
	assert.Len(t, c.State().Records, 3)
}

func TestConfirmDelete(t *testing.T) {
	c, r := newTestController()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	assert.ErrorIs(t, c.ConfirmDelete(ctx), ErrNoSelection)

	require.NoError(t, c.OpenDelete("i1"))
	r.fail = errors.New("nope")
	assert.Error(t, c.ConfirmDelete(ctx))
	assert.Len(t, c.State().Records, 2)

	r.fail = nil
	require.NoError(t, c.OpenDelete("i1"))
	require.NoError(t, c.ConfirmDelete(ctx))
	_, ok := c.Find("i1")
	assert.False(t, ok)
	_, ok = c.Find("i2")
	assert.True(t, ok)
	assert.Equal(t, ViewFeedback, c.View().Kind)
}

func TestToggleStatus(t *testing.T) {
	c, _ := newTestController()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	assert.ErrorIs(t, c.ToggleStatus(ctx, "i2"), models.ErrForbidden)
	require.NoError(t, c.ToggleStatus(ctx, "i1"))
	row, _ := c.Find("i1")
	assert.Equal(t, models.StatusClosed, row.Status)
	assert.NotNil(t, row.ClosedAt)
	assert.True(t, c.WatchByDefault())
}

func TestStatusFilter(t *testing.T) {
	c, r := newTestController()
	r.rows = append(r.rows, models.Issue{ID: "i3", Title: "Dead wedge", Status: models.StatusClosed, ReportedBy: "u1"})
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	assert.Equal(t, FilterAll, c.Filter())
	assert.Len(t, c.State().Records, 3)

	require.NoError(t, c.CycleFilter(ctx))
	assert.Equal(t, FilterOpen, c.Filter())
	assert.Equal(t, []string{"open", "in_progress"}, c.Query().Status)
	assert.Len(t, c.State().Records, 2)

	require.NoError(t, c.ToggleStatus(ctx, "i1"))
	_, ok := c.Find("i1")
	assert.False(t, ok, "closed issue stays in the open list")
	assert.Len(t, c.State().Records, 1)

	require.NoError(t, c.CycleFilter(ctx))
	assert.Equal(t, FilterClosed, c.Filter())
	closed := c.State().Records
	require.Len(t, closed, 1)
	assert.Equal(t, "i3", closed[0].ID)

	c.OpenCreate()
	require.NoError(t, c.Submit(ctx, models.IssueInput{Title: models.Ptr("Noise"), Description: models.Ptr("Fan")}))
	_, ok = c.Find("new")
	assert.False(t, ok, "new open issue listed under closed")

	require.NoError(t, c.CycleFilter(ctx))
	assert.Equal(t, FilterAll, c.Filter())
	assert.Nil(t, c.Query().Status)
	_, ok = c.Find("new")
	assert.True(t, ok)
}

func TestUpsertKeepsMatchesWithoutFilter(t *testing.T) {
	c, _ := newTestController()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.ToggleStatus(ctx, "i1"))
	row, ok := c.Find("i1")
	require.True(t, ok)
	assert.Equal(t, models.StatusClosed, row.Status)
}

func TestWatchReloads(t *testing.T) {
	c, r := newTestController()
	r.changes = make(chan models.Change)

	var mu sync.Mutex
	notified := 0
	c.OnChange(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	done := make(chan error)
	go func() { done <- c.Watch(context.Background()) }()

	r.changes <- models.Change{Table: models.TableIssues, Op: models.OpInsert, ID: "x"}
	r.changes <- models.Change{Table: models.TableIssues, Op: models.OpDelete, ID: "x"}
	close(r.changes)
	require.NoError(t, <-done)

	r.mu.Lock()
	assert.Equal(t, 2, r.lists)
	r.mu.Unlock()
	mu.Lock()
	assert.Equal(t, 4, notified)
	mu.Unlock()
}
