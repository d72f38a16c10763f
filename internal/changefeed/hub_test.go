package changefeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"techcrew/internal/logger"
	"techcrew/internal/models"
)

type recordingSink struct {
	got []models.Change
	err error
}

func (s *recordingSink) Send(_ context.Context, c models.Change) error {
	s.got = append(s.got, c)
	return s.err
}

func recv(t *testing.T, ch <-chan models.Change) models.Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return models.Change{}
	}
}

func TestPublishFansOutByTable(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	hub := NewHub(logger.Discard(), sink)

	issues := hub.Subscribe(ctx, models.TableIssues)
	all := hub.Subscribe(ctx, AllTables)
	bands := hub.Subscribe(ctx, models.TableBands)

	hub.Publish(ctx, models.Change{Table: models.TableIssues, Op: models.OpInsert, ID: "i1"})

	assert.Equal(t, "i1", recv(t, issues).ID)
	assert.Equal(t, "i1", recv(t, all).ID)
	select {
	case c := <-bands:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
	require.Len(t, sink.got, 1)
	assert.Equal(t, models.OpInsert, sink.got[0].Op)
}

func TestSinkErrorDoesNotStopDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing := &recordingSink{err: errors.New("broker down")}
	hub := NewHub(logger.Discard())
	hub.AddSink(failing)
	ch := hub.Subscribe(ctx, models.TableBands)

	hub.Publish(ctx, models.Change{Table: models.TableBands, Op: models.OpDelete, ID: "b1"})
	assert.Equal(t, models.OpDelete, recv(t, ch).Op)
	assert.Len(t, failing.got, 1)
}

func TestUnsubscribeOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	ch := hub.Subscribe(ctx, models.TableIssues)
	assert.Equal(t, 1, hub.SubscriberCount(models.TableIssues))

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
	assert.Equal(t, 0, hub.SubscriberCount(models.TableIssues))

	assert.NotPanics(t, func() {
		hub.Broadcast(models.Change{Table: models.TableIssues, ID: "late"})
	})
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.Discard())
	slow := hub.Subscribe(ctx, models.TableIssues)

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Broadcast(models.Change{Table: models.TableIssues})
	}
	assert.Len(t, slow, subscriberBuffer)
}
