package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
)

func TestCreateBudget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	budgets := NewBudgetService(f.deps)

	b, err := budgets.CreateBudget(ctx, core.Budget{
		TargetType: core.TargetConcept,
		TargetName: "Abastecimiento",
		Limit:      core.FromUnits(300000),
		Currency:   core.ARS,
		Spent:      core.FromUnits(99),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, core.DefaultAlertThreshold, b.AlertThreshold)
	assert.Equal(t, core.PeriodMonthly, b.Period)
	assert.True(t, b.Spent.IsZero())

	stored, err := budgets.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, core.FromUnits(300000), stored.Limit)
	assert.Equal(t, core.DefaultAlertThreshold, stored.AlertThreshold)
}

func TestCreateBudgetTargets(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		budget core.Budget
		want   error
	}{
		{
			name:   "category in unit",
			budget: core.Budget{TargetType: core.TargetCategory, TargetName: "Auto", Unit: core.UnitHogar},
		},
		{
			name:   "global category",
			budget: core.Budget{TargetType: core.TargetCategory, TargetName: "Gestión de Inmueble", Unit: core.UnitGlobal},
		},
		{
			name:   "category from another unit",
			budget: core.Budget{TargetType: core.TargetCategory, TargetName: "Auto", Unit: core.UnitBrasil},
			want:   core.ErrInvalidClassification,
		},
		{
			name:   "unknown concept",
			budget: core.Budget{TargetType: core.TargetConcept, TargetName: "Casino"},
			want:   core.ErrInvalidClassification,
		},
		{
			name:   "threshold over 100",
			budget: core.Budget{TargetType: core.TargetConcept, TargetName: "Digital", AlertThreshold: 120},
			want:   core.ErrInvalidThreshold,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := tt.budget
			b.Limit = core.FromUnits(1000)
			b.Currency = core.ARS
			_, err := NewBudgetService(f.deps).CreateBudget(ctx, b)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateBudget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	budgets := NewBudgetService(f.deps)

	b, err := budgets.CreateBudget(ctx, core.Budget{
		TargetType: core.TargetCategory,
		TargetName: "Personal",
		Limit:      core.FromUnits(1000),
		Currency:   core.ARS,
	})
	require.NoError(t, err)

	limit := core.FromUnits(2500)
	threshold := 90
	got, err := budgets.UpdateBudget(ctx, b.ID, BudgetEdit{Limit: &limit, AlertThreshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, limit, got.Limit)
	assert.Equal(t, 90, got.AlertThreshold)

	zero := core.Money{}
	_, err = budgets.UpdateBudget(ctx, b.ID, BudgetEdit{Limit: &zero})
	assert.ErrorIs(t, err, core.ErrInvalidLimit)

	stored, err := budgets.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, stored.Limit)

	require.NoError(t, budgets.DeleteBudget(ctx, b.ID))
	_, err = budgets.Get(ctx, b.ID)
	assert.Error(t, err)
}
