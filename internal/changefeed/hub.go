package changefeed

import (
	"context"
	"fmt"
	"sync"

	"techcrew/internal/logger"
	"techcrew/internal/models"
)

const subscriberBuffer = 16

// AllTables subscribes to every table.
const AllTables = ""

// Sink receives every change published on this instance.
type Sink interface {
	Send(ctx context.Context, c models.Change) error
}

// Hub fans row changes out to in-process subscribers and to sinks.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]chan models.Change
	sinks   []Sink
	log     *logger.Logger
}

func NewHub(log *logger.Logger, sinks ...Sink) *Hub {
	return &Hub{
		clients: make(map[string][]chan models.Change),
		sinks:   sinks,
		log:     log,
	}
}

// AddSink registers a sink. It must be called before publishing starts.
func (h *Hub) AddSink(s Sink) {
	h.mu.Lock()
	h.sinks = append(h.sinks, s)
	h.mu.Unlock()
}

// Subscribe returns a channel of changes to table (or every table for
// AllTables). The channel is closed once ctx is done.
func (h *Hub) Subscribe(ctx context.Context, table string) <-chan models.Change {
	ch := make(chan models.Change, subscriberBuffer)

	h.mu.Lock()
	h.clients[table] = append(h.clients[table], ch)
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(table, ch)
	}()
	return ch
}

// Publish broadcasts locally and forwards to every sink. Sink failures
// are logged; the write that caused the change has already happened.
func (h *Hub) Publish(ctx context.Context, c models.Change) {
	h.Broadcast(c)
	h.log.LogChange(c.Table, string(c.Op), c.ID)

	h.mu.RLock()
	sinks := h.sinks
	h.mu.RUnlock()
	for _, s := range sinks {
		if err := s.Send(ctx, c); err != nil {
			h.log.Error("CHANGEFEED", fmt.Sprintf("Sink %T failed for %s %s: %v", s, c.Table, c.ID, err))
		}
	}
}

// Broadcast delivers c to local subscribers only. Slow subscribers whose
// buffer is full miss the change.
func (h *Hub) Broadcast(c models.Change) {
	keys := []string{c.Table}
	if c.Table != AllTables {
		keys = append(keys, AllTables)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, key := range keys {
		for _, ch := range h.clients[key] {
			select {
			case ch <- c:
			default:
				h.log.Warn("CHANGEFEED", fmt.Sprintf("Dropped %s change for slow subscriber", c.Table))
			}
		}
	}
}

func (h *Hub) remove(table string, ch chan models.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[table]
	for i, c := range clients {
		if c == ch {
			h.clients[table] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(h.clients[table]) == 0 {
		delete(h.clients, table)
	}
}

// SubscriberCount reports how many subscribers listen on table.
func (h *Hub) SubscriberCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[table])
}
