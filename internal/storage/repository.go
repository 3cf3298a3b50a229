// Package storage is the SQLite DocumentStore. Documents of every collection
// live in one table as JSON bodies; batches run inside a single SQL
// transaction.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finanzas/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db      *sql.DB
	queries *Queries
	hub     *store.Hub
	newID   func() string
}

var _ store.DocumentStore = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers; SQLite would otherwise
	// report SQLITE_BUSY on concurrent batches.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLiteStore{db: db, queries: New(db), newID: store.NewID}
	s.hub = store.NewHub(s.List)
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Subscribe(ctx context.Context, collection string) (<-chan store.Snapshot, error) {
	return s.hub.Subscribe(ctx, collection)
}

func (s *SQLiteStore) List(ctx context.Context, collection string) ([]store.Document, error) {
	rows, err := s.queries.ListDocuments(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]store.Document, 0, len(rows))
	for _, r := range rows {
		d, err := toDocument(r)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	return get(ctx, s.queries, collection, id)
}

func (s *SQLiteStore) Insert(ctx context.Context, collection string, fields store.Fields) (string, error) {
	id := s.newID()
	if err := s.Commit(ctx, []store.Op{store.SetOp(collection, id, fields)}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) Update(ctx context.Context, collection, id string, patch store.Patch) error {
	return s.Commit(ctx, []store.Op{store.UpdateOp(collection, id, patch)})
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	return s.Commit(ctx, []store.Op{store.DeleteOp(collection, id)})
}

// Commit runs ops in one SQL transaction and rolls back on the first error.
func (s *SQLiteStore) Commit(ctx context.Context, ops []store.Op) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	q := s.queries.WithTx(tx)
	for i, op := range ops {
		if err := apply(ctx, q, op); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "Batch rollback failed", "error", rbErr)
			}
			return fmt.Errorf("batch op %d (%s %s/%s): %w", i, op.Kind, op.Collection, op.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.hub.Notify(store.Collections(ops)...)
	return nil
}

func apply(ctx context.Context, q *Queries, op store.Op) error {
	if op.ID == "" {
		return store.ErrEmptyID
	}
	switch op.Kind {
	case store.OpSet:
		return put(ctx, q, op.Collection, op.ID, op.Fields)
	case store.OpUpdate, store.OpUpsert:
		current, err := get(ctx, q, op.Collection, op.ID)
		switch {
		case errors.Is(err, store.ErrNotFound) && op.Kind == store.OpUpsert:
			current = store.Document{ID: op.ID, Fields: store.Fields{}}
		case err != nil:
			return err
		}
		merged, err := op.Patch.Apply(current.Fields)
		if err != nil {
			return err
		}
		return put(ctx, q, op.Collection, op.ID, merged)
	case store.OpDelete:
		n, err := q.DeleteDocument(ctx, op.Collection, op.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	}
	return store.ErrUnknownOpKind
}

func get(ctx context.Context, q *Queries, collection, id string) (store.Document, error) {
	row, err := q.GetDocument(ctx, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return toDocument(row)
}

func put(ctx context.Context, q *Queries, collection, id string, fields store.Fields) error {
	if fields == nil {
		fields = store.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return q.PutDocument(ctx, PutDocumentParams{Collection: collection, ID: id, Data: string(data)})
}

func toDocument(r DocumentRow) (store.Document, error) {
	var f store.Fields
	if err := json.Unmarshal([]byte(r.Data), &f); err != nil {
		return store.Document{}, fmt.Errorf("decode document %s: %w", r.ID, err)
	}
	return store.Document{ID: r.ID, Fields: f}, nil
}
