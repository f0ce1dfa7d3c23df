// Package realtime fans row-change events out to in-process subscribers such
// as admin dashboard websockets. Events are invalidation hints: subscribers
// refetch, they do not apply deltas.
package realtime

import (
	"sync"
	"time"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

type Mask uint8

const (
	MaskInsert Mask = 1 << iota
	MaskUpdate
	MaskDelete

	MaskAll = MaskInsert | MaskUpdate | MaskDelete
)

func (m Mask) matches(t EventType) bool {
	switch t {
	case EventInsert:
		return m&MaskInsert != 0
	case EventUpdate:
		return m&MaskUpdate != 0
	case EventDelete:
		return m&MaskDelete != 0
	}
	return false
}

type Event struct {
	Table string    `json:"table"`
	Type  EventType `json:"type"`
	ID    string    `json:"id,omitempty"`
	At    time.Time `json:"at"`
}

type Publisher interface {
	Publish(Event)
}

type subscriber struct {
	table string
	mask  Mask
	fn    func(Event)
}

type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[uint64]subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]subscriber)}
}

// Subscribe registers fn for events on table whose type is in mask. fn runs on
// the publisher's goroutine and must not block.
func (h *Hub) Subscribe(table string, mask Mask, fn func(Event)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.subs[h.next] = subscriber{table: table, mask: mask, fn: fn}
	return &Subscription{hub: h, id: h.next}
}

func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	h.mu.RLock()
	targets := make([]func(Event), 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.table == ev.Table && sub.mask.matches(ev.Type) {
			targets = append(targets, sub.fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range targets {
		fn(ev)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

type Subscription struct {
	hub  *Hub
	id   uint64
	once sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
	})
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
