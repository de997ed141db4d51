// Package live fans out change notifications so that subscribers can re-read
// a collection and recompute whatever they derive from it.
package live

import (
	"context"
	"sync"
)

// Kind names a collection.
type Kind string

const (
	KindBatches  Kind = "batches"
	KindSales    Kind = "sales"
	KindExpenses Kind = "expenses"
)

// Kinds lists every collection that can be watched.
var Kinds = []Kind{KindBatches, KindSales, KindExpenses}

// Valid reports whether k is a known collection.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}

	return false
}

// Notifier is told after every successful write.
type Notifier interface {
	Notify(ctx context.Context, kind Kind)
}

type discard struct{}

func (discard) Notify(context.Context, Kind) {}

// Discard drops notifications. Used by one-shot tools that nobody watches.
var Discard Notifier = discard{}

// Hub delivers notifications to in-process subscribers. Signals are coalesced:
// a slow subscriber sees at most one pending signal, which is enough because
// it always re-reads the full collection.
type Hub struct {
	mu   sync.Mutex
	subs map[Kind]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[Kind]map[chan struct{}]struct{})}
}

// Subscribe returns a channel signalled on every change to kind and a cancel
// function that must be called to release it.
func (h *Hub) Subscribe(kind Kind) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[kind] == nil {
		h.subs[kind] = make(map[chan struct{}]struct{})
	}

	h.subs[kind][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once

	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[kind], ch)
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Notify signals local subscribers of kind.
func (h *Hub) Notify(_ context.Context, kind Kind) {
	h.broadcast(kind)
}

func (h *Hub) broadcast(kind Kind) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[kind] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for kind.
func (h *Hub) Subscribers(kind Kind) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs[kind])
}
