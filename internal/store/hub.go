package store

import (
	"context"
	"sync"
)

// Loader reads the full content of a collection.
type Loader func(ctx context.Context, collection string) ([]Document, error)

// Hub fans out change notifications to subscribers. Each subscriber reloads
// the collection when notified, so bursts of changes coalesce into a single
// snapshot and a slow reader only ever sees the latest state.
type Hub struct {
	load Loader

	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewHub(load Loader) *Hub {
	return &Hub{load: load, subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe implements DocumentStore.Subscribe on top of the hub's loader.
func (h *Hub) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wake := make(chan struct{}, 1)
	wake <- struct{}{}

	h.mu.Lock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[chan struct{}]struct{})
	}
	h.subs[collection][wake] = struct{}{}
	h.mu.Unlock()

	out := make(chan Snapshot)
	go func() {
		defer close(out)
		defer h.remove(collection, wake)
		for {
			select {
			case <-ctx.Done():
				return
			case <-wake:
			}
			docs, err := h.load(ctx, collection)
			snap := Snapshot{Collection: collection, Documents: docs, Err: err}
			if err != nil {
				snap.Documents = nil
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Notify wakes every subscriber of the given collections.
func (h *Hub) Notify(collections ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range collections {
		for wake := range h.subs[c] {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

// Subscribers reports how many subscriptions are open on collection.
func (h *Hub) Subscribers(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

func (h *Hub) remove(collection string, wake chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[collection], wake)
}
