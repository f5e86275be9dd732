package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
)

var ErrHubClosed = errors.New("realtime hub is closed")

// Subscriber is one live connection. Send must not block; it returns false
// when the frame could not be queued.
type Subscriber interface {
	ID() string
	Send(frame []byte) bool
	Close()
}

// Hub is the registry of connected subscribers. It is built once at startup
// and shared by the HTTP upgrade handler and the notifier fan-out.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]Subscriber
	closed bool
	logger *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		subs:   make(map[string]Subscriber),
		logger: logger.Named("realtime"),
	}
}

func (h *Hub) Register(sub Subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.subs[sub.ID()] = sub
	return nil
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if ok {
		sub.Close()
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// NotifyChanged sends one ODDS_UPDATE frame with every record to all
// subscribers.
func (h *Hub) NotifyChanged(ctx context.Context, records []odds.Odds) error {
	if len(records) == 0 {
		return nil
	}
	frame, err := odds.EncodeUpdate(records)
	if err != nil {
		return fmt.Errorf("encode odds update: %w", err)
	}

	delivered, pruned := h.Broadcast(frame)
	h.logger.DebugContext(ctx, "odds update broadcast",
		"records", len(records),
		"delivered", delivered,
		"pruned", pruned,
	)
	return nil
}

// Broadcast queues frame on every subscriber. Subscribers that cannot take
// it are dropped.
func (h *Hub) Broadcast(frame []byte) (delivered, pruned int) {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		if sub.Send(frame) {
			delivered++
			continue
		}
		h.Unregister(sub.ID())
		pruned++
	}
	return delivered, pruned
}

// Close disconnects everyone and rejects new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[string]Subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
