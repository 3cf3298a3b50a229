package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type DocumentRow struct {
	ID   string
	Data string
}

const listDocuments = `SELECT id, data FROM documents WHERE collection = ? ORDER BY seq`

func (q *Queries) ListDocuments(ctx context.Context, collection string) ([]DocumentRow, error) {
	rows, err := q.db.QueryContext(ctx, listDocuments, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DocumentRow
	for rows.Next() {
		var i DocumentRow
		if err := rows.Scan(&i.ID, &i.Data); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const getDocument = `SELECT id, data FROM documents WHERE collection = ? AND id = ?`

func (q *Queries) GetDocument(ctx context.Context, collection, id string) (DocumentRow, error) {
	var i DocumentRow
	err := q.db.QueryRowContext(ctx, getDocument, collection, id).Scan(&i.ID, &i.Data)
	return i, err
}

// insertDocument replaces the body on conflict but keeps seq, so a document
// that is set again keeps its position in the collection.
const insertDocument = `INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET
    data = excluded.data,
    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`

type PutDocumentParams struct {
	Collection string
	ID         string
	Data       string
}

func (q *Queries) PutDocument(ctx context.Context, arg PutDocumentParams) error {
	_, err := q.db.ExecContext(ctx, insertDocument, arg.Collection, arg.ID, arg.Data)
	return err
}

const deleteDocument = `DELETE FROM documents WHERE collection = ? AND id = ?`

func (q *Queries) DeleteDocument(ctx context.Context, collection, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteDocument, collection, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
