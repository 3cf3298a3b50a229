package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

func TestCreateAccountStartsAtInitialBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	accounts := NewAccountService(f.deps)

	a, err := accounts.CreateAccount(ctx, core.Account{
		Name:           "Mercado Pago",
		Type:           core.AccountVirtual,
		Currency:       core.ARS,
		InitialBalance: core.FromUnits(1234),
		Balance:        core.FromUnits(999999),
	})
	require.NoError(t, err)

	stored := f.account(t, a.ID)
	assert.Equal(t, core.FromUnits(1234), stored.Balance)
	assert.True(t, stored.IsActive)
	assert.Equal(t, fixedNow, stored.CreatedAt.UTC())
}

func TestUpdateAccountLeavesBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	accounts := NewAccountService(f.deps)
	ledger := NewLedgerService(f.deps)

	a, err := accounts.CreateAccount(ctx, core.Account{Name: "BNA", Type: core.AccountBank, Currency: core.ARS})
	require.NoError(t, err)
	_, err = ledger.PostTransaction(ctx, income(a.ID, 800))
	require.NoError(t, err)

	name, color := "Banco Nación", "#0055a5"
	got, err := accounts.UpdateAccount(ctx, a.ID, AccountEdit{Name: &name, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)

	stored := f.account(t, a.ID)
	assert.Equal(t, name, stored.Name)
	assert.Equal(t, color, stored.Color)
	assert.Equal(t, core.FromUnits(800), stored.Balance)

	empty := ""
	_, err = accounts.UpdateAccount(ctx, a.ID, AccountEdit{Name: &empty})
	assert.ErrorIs(t, err, core.ErrMissingName)

	_, err = accounts.UpdateAccount(ctx, "missing", AccountEdit{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeactivateAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	accounts := NewAccountService(f.deps)

	a, err := accounts.CreateAccount(ctx, core.Account{Name: "Efectivo", Type: core.AccountCash, Currency: core.USD})
	require.NoError(t, err)
	require.NoError(t, accounts.DeactivateAccount(ctx, a.ID))
	assert.False(t, f.account(t, a.ID).IsActive)

	assert.ErrorIs(t, accounts.DeactivateAccount(ctx, "missing"), store.ErrNotFound)
}
