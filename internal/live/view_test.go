package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
)

func start(t *testing.T, docs store.DocumentStore) *View {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	v := New(store.NewRepositories(docs), nil, nil)
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("view did not stop")
		}
	})
	select {
	case <-v.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("view never became ready")
	}
	return v
}

func TestViewFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	repos := store.NewRepositories(docs)
	for _, a := range []core.Account{
		{Name: "Mercado Pago", IsActive: true, Balance: core.FromUnits(100)},
		{Name: "Cerrada", IsActive: false, Balance: core.FromUnits(5000)},
		{Name: "BNA", IsActive: true, Balance: core.FromUnits(50)},
	} {
		_, err := repos.Accounts.Insert(ctx, a)
		require.NoError(t, err)
	}
	for _, s := range []core.Service{
		{Name: "Alquiler", DueDate: 10, IsActive: true, Status: core.StatusPending},
		{Name: "Viejo", DueDate: 1, IsActive: false, Status: core.StatusPending},
		{Name: "EPEC", DueDate: 5, IsActive: true, Status: core.StatusPending},
	} {
		_, err := repos.Services.Insert(ctx, s)
		require.NoError(t, err)
	}

	v := start(t, docs)

	accounts := v.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, "BNA", accounts[0].Name)
	assert.Equal(t, "Mercado Pago", accounts[1].Name)

	services := v.Services()
	require.Len(t, services, 2)
	assert.Equal(t, "EPEC", services[0].Name)
	assert.Equal(t, "Alquiler", services[1].Name)

	assert.Empty(t, v.Errors())
	in := v.Input()
	assert.Len(t, in.Accounts, 2)
	assert.Empty(t, in.Budgets)
}

func TestViewFollowsChanges(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	v := start(t, docs)
	assert.Empty(t, v.Transactions())

	repos := store.NewRepositories(docs)
	older := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 1, 0)
	_, err := repos.Transactions.Insert(ctx, core.Transaction{Account: "a", DateOperation: older})
	require.NoError(t, err)
	_, err = repos.Transactions.Insert(ctx, core.Transaction{Account: "b", DateOperation: newer})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(v.Transactions()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "b", v.Transactions()[0].Account)
}

// brokenBudgets fails reads of the budgets collection only.
type brokenBudgets struct {
	store.DocumentStore
	hub *store.Hub
}

func (b *brokenBudgets) Subscribe(ctx context.Context, c string) (<-chan store.Snapshot, error) {
	if c == store.Budgets {
		return b.hub.Subscribe(ctx, c)
	}
	return b.DocumentStore.Subscribe(ctx, c)
}

func TestViewReportsLoadErrors(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	_, err := store.NewRepository[core.Account](docs, store.Accounts).Insert(ctx, core.Account{Name: "BNA", IsActive: true})
	require.NoError(t, err)

	broken := &brokenBudgets{
		DocumentStore: docs,
		hub: store.NewHub(func(context.Context, string) ([]store.Document, error) {
			return nil, errors.New("permission denied")
		}),
	}
	v := start(t, broken)

	assert.Equal(t, []string{"failed to load budgets"}, v.Errors())
	assert.Empty(t, v.Budgets())
	assert.Len(t, v.Accounts(), 1)
	assert.Equal(t, []string{"failed to load budgets"}, v.Input().Errors)
}
