package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vbonduro/fieldtech/internal/events"
)

const defaultBuffer = 64

// Filter reports whether an event may be delivered to a subscriber.
type Filter func(events.Event) bool

type subscriber struct {
	ch          chan events.Event
	collections map[string]struct{}
	allow       Filter
	once        sync.Once
}

func (s *subscriber) wants(e events.Event) bool {
	if len(s.collections) > 0 {
		if _, ok := s.collections[e.Collection]; !ok {
			return false
		}
	}
	return s.allow == nil || s.allow(e)
}

// Hub fans change events out to in-process subscribers. A subscriber whose
// buffer is full misses the event rather than blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	buffer  int
	dropped atomic.Int64
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: make(map[*subscriber]struct{}), buffer: buffer}
}

// Subscribe returns a channel of events for the given collections (all
// collections when none are named) and a func that ends the subscription
// and closes the channel.
func (h *Hub) Subscribe(collections ...string) (<-chan events.Event, func()) {
	return h.SubscribeFiltered(nil, collections...)
}

// SubscribeFiltered is Subscribe with events also passed through allow.
func (h *Hub) SubscribeFiltered(allow Filter, collections ...string) (<-chan events.Event, func()) {
	s := &subscriber{
		ch:          make(chan events.Event, h.buffer),
		collections: make(map[string]struct{}, len(collections)),
		allow:       allow,
	}
	for _, c := range collections {
		s.collections[c] = struct{}{}
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	return s.ch, func() {
		s.once.Do(func() {
			h.mu.Lock()
			delete(h.subs, s)
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

func (h *Hub) Publish(_ context.Context, e events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if !s.wants(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			h.dropped.Add(1)
			slog.Warn("realtime subscriber too slow, event dropped", "collection", e.Collection, "id", e.ID)
		}
	}
}

// Subscribers is the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped is the number of events discarded for slow subscribers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
