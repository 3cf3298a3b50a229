package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/metrics"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
)

var fixedNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

type fakePublisher struct {
	mu   sync.Mutex
	envs []*amqp.Envelope
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, env *amqp.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.envs = append(f.envs, env)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.envs))
	for i, e := range f.envs {
		out[i] = e.Type
	}
	return out
}

// failingCommit lets reads through and rejects every batch.
type failingCommit struct {
	store.DocumentStore
	calls int
}

var errBatch = errors.New("datastore unavailable")

func (f *failingCommit) Commit(context.Context, []store.Op) error {
	f.calls++
	return errBatch
}

type fixture struct {
	docs      *memory.Store
	publisher *fakePublisher
	deps      Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docs := memory.New()
	pub := &fakePublisher{}
	return &fixture{
		docs:      docs,
		publisher: pub,
		deps: Deps{
			Store:     docs,
			Publisher: pub,
			Metrics:   metrics.NewCollector(),
			Clock:     func() time.Time { return fixedNow },
		},
	}
}

func (f *fixture) account(t *testing.T, id string) core.Account {
	t.Helper()
	a, err := store.NewRepository[core.Account](f.docs, store.Accounts).Get(context.Background(), id)
	require.NoError(t, err)
	return a
}

func expense(account string, units int64) core.Transaction {
	return core.Transaction{
		Type:     core.TxExpense,
		Amount:   core.FromUnits(units),
		Currency: core.ARS,
		Unit:     core.UnitHogar,
		Category: "Vivienda y Vida Diaria",
		Concept:  "Abastecimiento",
		Detail:   "Supermercado",
		Account:  account,
	}
}

func income(account string, units int64) core.Transaction {
	tx := expense(account, units)
	tx.Type = core.TxIncome
	tx.Unit = core.UnitProfesional
	tx.Category = "Cargas Profesionales"
	tx.Concept = "Cargas profesionales"
	tx.Detail = ""
	return tx
}
