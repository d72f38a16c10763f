package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techcrew/internal/api/apitest"
	"techcrew/internal/config"
	"techcrew/internal/logger"
	"techcrew/internal/models"
)

func newClient(t *testing.T, env *apitest.Env, user, email string) *Client {
	return New(config.ClientConfig{
		URL:    env.Server.URL + "/",
		APIKey: apitest.APIKey,
		Token:  apitest.Token(t, user, email),
	}, logger.Discard())
}

func TestCRUDThroughGateway(t *testing.T) {
	env := apitest.New(t)
	alice := newClient(t, env, "user-alice", "alice@example.com")
	bob := newClient(t, env, "user-bob", "bob@example.com")
	ctx := context.Background()

	sched, err := alice.Schedules.Create(ctx, models.ScheduleInput{
		Date:     models.Ptr(models.Date("2031-05-01")),
		ShowTime: models.Ptr("21:00"),
		BandName: models.Ptr("Late Set"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Late Set", sched.DisplayBand())

	rows, err := alice.Schedules.List(ctx, models.ListQuery{From: "2031-01-01"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, sched.ID, rows[0].ID)

	_, err = bob.Schedules.Update(ctx, sched.ID, models.ScheduleInput{ShowTime: models.Ptr("22:00")})
	assert.ErrorIs(t, err, models.ErrForbidden)

	got, err := alice.Schedules.Update(ctx, sched.ID, models.ScheduleInput{ShowTime: models.Ptr("22:00")})
	require.NoError(t, err)
	assert.Equal(t, "22:00", got.ShowTime)
	assert.Equal(t, "Late Set", got.BandName)

	require.NoError(t, alice.Schedules.Remove(ctx, sched.ID))
	_, err = alice.Schedules.Get(ctx, sched.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = alice.Bands.Create(ctx, models.BandInput{Name: models.Ptr("x")})
	assert.ErrorIs(t, err, models.ErrValidation)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "home_location")
}

func TestIssueAndInventoryExtras(t *testing.T) {
	env := apitest.New(t)
	bob := newClient(t, env, "user-bob", "bob@example.com")
	ctx := context.Background()

	issue, err := bob.Issues.ToggleStatus(ctx, "issue-2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, issue.Status)

	cats, err := bob.Inventory.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(models.DefaultCategories))

	totals, err := bob.Inventory.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, totals, len(models.DefaultCategories))

	png, err := bob.Label(ctx, "item-2")
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	_, err = bob.Label(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	me, err := bob.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-bob", me.ID)

	d, err := bob.Dashboard(ctx)
	require.NoError(t, err)
	assert.Len(t, d.RecentIssues, 1)
}

func TestUpdateMeAndConflict(t *testing.T) {
	env := apitest.New(t)
	alice := newClient(t, env, "user-alice", "alice@example.com")
	bob := newClient(t, env, "user-bob", "bob@example.com")
	ctx := context.Background()

	me, err := alice.UpdateMe(ctx, models.ProfileInput{FullName: models.Ptr("Alice FOH")})
	require.NoError(t, err)
	assert.Equal(t, "Alice FOH", me.FullName)

	_, err = alice.UpdateMe(ctx, models.ProfileInput{})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = bob.GigLogs.Create(ctx, models.GigLogInput{Date: models.Ptr(models.Date("2024-04-01")), BandID: models.Ptr("band-rockers"), Venue: models.Ptr("Dive")})
	require.NoError(t, err)
	err = alice.Bands.Remove(ctx, "band-rockers")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUnauthorized(t *testing.T) {
	env := apitest.New(t)
	c := New(config.ClientConfig{URL: env.Server.URL, APIKey: apitest.APIKey}, logger.Discard())
	_, err := c.Bands.List(context.Background(), models.ListQuery{})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = c.Issues.Subscribe(context.Background())
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSubscribe(t *testing.T) {
	env := apitest.New(t)
	alice := newClient(t, env, "user-alice", "alice@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := alice.Issues.Subscribe(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return env.Hub.SubscriberCount(models.TableIssues) == 1 }, time.Second, 10*time.Millisecond)

	created, err := alice.Issues.Create(context.Background(), models.IssueInput{Title: models.Ptr("Buzz"), Description: models.Ptr("Left main buzzes")})
	require.NoError(t, err)

	select {
	case c := <-changes:
		assert.Equal(t, models.OpInsert, c.Op)
		assert.Equal(t, created.ID, c.ID)
		assert.Equal(t, "user-alice", c.ActorID)
	case <-time.After(3 * time.Second):
		t.Fatal("no change received")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-changes
		return !open
	}, 3*time.Second, 10*time.Millisecond)
}
