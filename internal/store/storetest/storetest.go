// Package storetest holds behavior checks shared by every DocumentStore
// backend.
package storetest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

// Run exercises the DocumentStore contract against stores built by open.
func Run(t *testing.T, open func(t *testing.T) store.DocumentStore) {
	t.Run("InsertGetList", func(t *testing.T) { testInsertGetList(t, open(t)) })
	t.Run("UpdateRequiresDocument", func(t *testing.T) { testUpdateRequiresDocument(t, open(t)) })
	t.Run("DeleteRequiresDocument", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("UpsertIncrement", func(t *testing.T) { testUpsertIncrement(t, open(t)) })
	t.Run("BatchIsAtomic", func(t *testing.T) { testBatchIsAtomic(t, open(t)) })
	t.Run("SubscribePushesSnapshots", func(t *testing.T) { testSubscribe(t, open(t)) })
}

func fields(t *testing.T, v map[string]any) store.Fields {
	t.Helper()
	f, err := store.Encode(v)
	require.NoError(t, err)
	return f
}

func balance(t *testing.T, d store.Document) core.Money {
	t.Helper()
	var m core.Money
	require.NoError(t, json.Unmarshal(d.Fields["balance"], &m))
	return m
}

func testInsertGetList(t *testing.T, s store.DocumentStore) {
	ctx := context.Background()
	first, err := s.Insert(ctx, store.Accounts, fields(t, map[string]any{"name": "BNA"}))
	require.NoError(t, err)
	second, err := s.Insert(ctx, store.Accounts, fields(t, map[string]any{"name": "Mercado Pago", "id": "ignored"}))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	doc, err := s.Get(ctx, store.Accounts, second)
	require.NoError(t, err)
	assert.JSONEq(t, `"Mercado Pago"`, string(doc.Fields["name"]))
	assert.NotContains(t, doc.Fields, "id")

	docs, err := s.List(ctx, store.Accounts)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0].ID)
	assert.Equal(t, second, docs[1].ID)

	empty, err := s.List(ctx, store.Budgets)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.Get(ctx, store.Accounts, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUpdateRequiresDocument(t *testing.T, s store.DocumentStore) {
	ctx := context.Background()
	err := s.Update(ctx, store.Services, "missing", store.Patch{"status": "PAID"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	id, err := s.Insert(ctx, store.Services, fields(t, map[string]any{"name": "EPEC", "status": "PENDING"}))
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, store.Services, id, store.Patch{"status": "RESERVED"}))

	doc, err := s.Get(ctx, store.Services, id)
	require.NoError(t, err)
	assert.JSONEq(t, `"RESERVED"`, string(doc.Fields["status"]))
	assert.JSONEq(t, `"EPEC"`, string(doc.Fields["name"]))
}

func testDelete(t *testing.T, s store.DocumentStore) {
	ctx := context.Background()
	assert.ErrorIs(t, s.Delete(ctx, store.Budgets, "missing"), store.ErrNotFound)

	id, err := s.Insert(ctx, store.Budgets, fields(t, map[string]any{"target_name": "Auto"}))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, store.Budgets, id))
	_, err = s.Get(ctx, store.Budgets, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUpsertIncrement(t *testing.T, s store.DocumentStore) {
	ctx := context.Background()
	inc := func(cents int64) []store.Op {
		return []store.Op{store.UpsertOp(store.Accounts, "efectivo", store.Patch{"balance": store.Increment{By: core.Money{Cents: cents}}})}
	}
	require.NoError(t, s.Commit(ctx, inc(-150000)))
	doc, err := s.Get(ctx, store.Accounts, "efectivo")
	require.NoError(t, err)
	assert.Equal(t, int64(-150000), balance(t, doc).Cents)

	require.NoError(t, s.Commit(ctx, inc(20050)))
	doc, err = s.Get(ctx, store.Accounts, "efectivo")
	require.NoError(t, err)
	assert.Equal(t, int64(-129950), balance(t, doc).Cents)
}

func testBatchIsAtomic(t *testing.T, s store.DocumentStore) {
	ctx := context.Background()
	require.NoError(t, s.Commit(ctx, []store.Op{
		store.SetOp(store.Accounts, "bna", fields(t, map[string]any{"name": "BNA", "balance": 100})),
	}))

	err := s.Commit(ctx, []store.Op{
		store.SetOp(store.Transactions, "tx-1", fields(t, map[string]any{"amount": 50})),
		store.UpsertOp(store.Accounts, "bna", store.Patch{"balance": store.Increment{By: core.FromUnits(-50)}}),
		store.UpdateOp(store.Services, "missing", store.Patch{"status": "PAID"}),
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Get(ctx, store.Transactions, "tx-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	doc, err := s.Get(ctx, store.Accounts, "bna")
	require.NoError(t, err)
	assert.Equal(t, core.FromUnits(100), balance(t, doc))
}

func testSubscribe(t *testing.T, s store.DocumentStore) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps, err := s.Subscribe(ctx, store.Services)
	require.NoError(t, err)

	first := next(t, snaps)
	assert.Equal(t, store.Services, first.Collection)
	assert.NoError(t, first.Err)
	assert.Empty(t, first.Documents)

	_, err = s.Insert(context.Background(), store.Services, fields(t, map[string]any{"name": "Ecogas"}))
	require.NoError(t, err)
	assert.Len(t, waitFor(t, snaps, 1).Documents, 1)

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-snaps:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("subscription not closed after cancel")
		}
	}
}

func next(t *testing.T, snaps <-chan store.Snapshot) store.Snapshot {
	t.Helper()
	select {
	case s := <-snaps:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
	}
	return store.Snapshot{}
}

// waitFor reads snapshots until one holds n documents.
func waitFor(t *testing.T, snaps <-chan store.Snapshot, n int) store.Snapshot {
	t.Helper()
	for {
		s := next(t, snaps)
		if len(s.Documents) == n {
			return s
		}
	}
}
