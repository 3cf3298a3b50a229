// Package memory is an in-process DocumentStore, used for development and
// tests. Data is lost on exit.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"finanzas/internal/store"
)

type collection struct {
	order []string
	docs  map[string]store.Fields
}

type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
	hub         *store.Hub
	newID       func() string
}

var _ store.DocumentStore = (*Store)(nil)

func New() *Store {
	s := &Store{collections: make(map[string]*collection), newID: store.NewID}
	s.hub = store.NewHub(s.List)
	return s
}

// NewFromFile seeds the store from a JSON file shaped as
// {"accounts": [{"id": "...", ...}], "services": [...]}. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed map[string][]map[string]json.RawMessage
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for name, docs := range seed {
		c := s.collection(name)
		for _, raw := range docs {
			var id string
			if rawID, ok := raw["id"]; ok {
				if err := json.Unmarshal(rawID, &id); err != nil {
					return nil, fmt.Errorf("parse seed %s: %s id: %w", path, name, err)
				}
			}
			if id == "" {
				id = s.newID()
			}
			fields := store.Fields(raw)
			delete(fields, "id")
			c.put(id, fields)
		}
	}
	return s, nil
}

func (s *Store) Subscribe(ctx context.Context, name string) (<-chan store.Snapshot, error) {
	return s.hub.Subscribe(ctx, name)
}

// List returns the collection in insertion order.
func (s *Store) List(_ context.Context, name string) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collections[name]
	if c == nil {
		return []store.Document{}, nil
	}
	out := make([]store.Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, store.Document{ID: id, Fields: c.docs[id].Clone()})
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, name, id string) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.collections[name]; c != nil {
		if f, ok := c.docs[id]; ok {
			return store.Document{ID: id, Fields: f.Clone()}, nil
		}
	}
	return store.Document{}, store.ErrNotFound
}

func (s *Store) Insert(ctx context.Context, name string, fields store.Fields) (string, error) {
	id := s.newID()
	if err := s.Commit(ctx, []store.Op{store.SetOp(name, id, fields)}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, name, id string, patch store.Patch) error {
	return s.Commit(ctx, []store.Op{store.UpdateOp(name, id, patch)})
}

func (s *Store) Delete(ctx context.Context, name, id string) error {
	return s.Commit(ctx, []store.Op{store.DeleteOp(name, id)})
}

// Commit applies ops to copies of the touched collections and swaps them in
// only when every op succeeded.
func (s *Store) Commit(ctx context.Context, ops []store.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	staged := make(map[string]*collection)
	for _, name := range store.Collections(ops) {
		staged[name] = s.collection(name).clone()
	}
	for i, op := range ops {
		if err := apply(staged[op.Collection], op); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("batch op %d (%s %s/%s): %w", i, op.Kind, op.Collection, op.ID, err)
		}
	}
	for name, c := range staged {
		s.collections[name] = c
	}
	s.mu.Unlock()

	s.hub.Notify(store.Collections(ops)...)
	return nil
}

func (s *Store) Close() error { return nil }

// collection returns the named collection, creating it. Callers hold s.mu.
func (s *Store) collection(name string) *collection {
	c := s.collections[name]
	if c == nil {
		c = &collection{docs: make(map[string]store.Fields)}
		s.collections[name] = c
	}
	return c
}

func apply(c *collection, op store.Op) error {
	if op.ID == "" {
		return store.ErrEmptyID
	}
	current, exists := c.docs[op.ID]
	switch op.Kind {
	case store.OpSet:
		c.put(op.ID, op.Fields.Clone())
	case store.OpUpdate:
		if !exists {
			return store.ErrNotFound
		}
		merged, err := op.Patch.Apply(current)
		if err != nil {
			return err
		}
		c.docs[op.ID] = merged
	case store.OpUpsert:
		if !exists {
			current = store.Fields{}
		}
		merged, err := op.Patch.Apply(current)
		if err != nil {
			return err
		}
		c.put(op.ID, merged)
	case store.OpDelete:
		if !exists {
			return store.ErrNotFound
		}
		c.remove(op.ID)
	default:
		return store.ErrUnknownOpKind
	}
	return nil
}

func (c *collection) put(id string, f store.Fields) {
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = f
}

func (c *collection) remove(id string) {
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *collection) clone() *collection {
	out := &collection{order: append([]string(nil), c.order...), docs: make(map[string]store.Fields, len(c.docs))}
	for id, f := range c.docs {
		out.docs[id] = f
	}
	return out
}
