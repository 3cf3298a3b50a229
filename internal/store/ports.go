// Package store defines the live document collection contract the finance
// core depends on, and typed repositories on top of it.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Collections used by the finance core.
const (
	Accounts     = "accounts"
	Transactions = "transactions"
	Services     = "services"
	Budgets      = "budgets"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrEmptyID       = errors.New("document id cannot be empty")
	ErrUnknownOpKind = errors.New("unknown batch operation")
)

type (
	// Fields is the stored body of a document, keyed by persisted field name.
	Fields map[string]json.RawMessage

	Document struct {
		ID     string
		Fields Fields
	}

	// Snapshot is the full content of a collection at one point in time.
	// A failed read is delivered as a snapshot with Err set and no documents.
	Snapshot struct {
		Collection string
		Documents  []Document
		Err        error
	}

	// DocumentStore is implemented by every persistence backend.
	DocumentStore interface {
		// Subscribe pushes the current snapshot immediately and again after
		// every committed change to the collection. The channel is closed
		// once ctx is done.
		Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error)
		List(ctx context.Context, collection string) ([]Document, error)
		Get(ctx context.Context, collection, id string) (Document, error)
		Insert(ctx context.Context, collection string, fields Fields) (string, error)
		// Update merges patch into an existing document and fails with
		// ErrNotFound when it is absent.
		Update(ctx context.Context, collection, id string, patch Patch) error
		Delete(ctx context.Context, collection, id string) error
		// Commit applies every op or none of them.
		Commit(ctx context.Context, ops []Op) error
		Close() error
	}
)

// NewID generates a document id.
func NewID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Encode converts a value into stored fields. The "id" key is dropped
// because the id lives alongside the document body, not inside it.
func Encode(v any) (Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var f Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	delete(f, "id")
	return f, nil
}

// Decode converts a document into T, exposing the document id as "id".
func Decode[T any](d Document) (T, error) {
	var out T
	f := d.Fields.Clone()
	id, err := json.Marshal(d.ID)
	if err != nil {
		return out, err
	}
	f["id"] = id
	b, err := json.Marshal(f)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}
