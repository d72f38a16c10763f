package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techcrew/internal/logger"
	"techcrew/internal/models"
)

func TestRedisBridgeRelaysBetweenInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.Discard()
	clientA, err := ConnectRedis(ctx, mr.Addr(), log)
	require.NoError(t, err)
	defer clientA.Close()
	clientB, err := ConnectRedis(ctx, mr.Addr(), log)
	require.NoError(t, err)
	defer clientB.Close()

	hubA := NewHub(log)
	bridgeA := NewRedisBridge(clientA, "changes", hubA, log)
	hubA.AddSink(bridgeA)

	hubB := NewHub(log)
	bridgeB := NewRedisBridge(clientB, "changes", hubB, log)
	hubB.AddSink(bridgeB)

	go bridgeA.Run(ctx)
	go bridgeB.Run(ctx)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("changes")["changes"] == 2
	}, 2*time.Second, 10*time.Millisecond)

	onA := hubA.Subscribe(ctx, models.TableIssues)
	onB := hubB.Subscribe(ctx, models.TableIssues)

	hubA.Publish(ctx, models.Change{Table: models.TableIssues, Op: models.OpUpdate, ID: "i1"})

	assert.Equal(t, "i1", recv(t, onB).ID)
	assert.Equal(t, "i1", recv(t, onA).ID)

	// A must not see its own change a second time via Redis.
	select {
	case c := <-onA:
		t.Fatalf("duplicate delivery %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConnectRedisFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), addr, logger.Discard())
	assert.Error(t, err)
}
