package services

import (
	"context"
	"fmt"

	"finanzas/internal/catalog"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/store"
)

// BudgetService manages budget definitions. It never writes spent, which
// is owned by whatever process aggregates transactions into budgets.
type BudgetService struct {
	deps    Deps
	budgets *store.Repository[core.Budget]
	log     *log.Logger
}

type BudgetEdit struct {
	Limit          *core.Money `json:"limit,omitempty"`
	AlertThreshold *int        `json:"alertThreshold,omitempty"`
}

func NewBudgetService(deps Deps) *BudgetService {
	return &BudgetService{
		deps:    deps,
		budgets: store.NewRepository[core.Budget](deps.Store, store.Budgets),
		log:     deps.logger(log.ComponentBudgets),
	}
}

// CreateBudget checks the target against the catalog and stores the budget
// with spent at zero.
func (s *BudgetService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.AlertThreshold == 0 {
		b.AlertThreshold = core.DefaultAlertThreshold
	}
	b.Period = core.PeriodMonthly
	b.Spent = core.Money{}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := validateTarget(b); err != nil {
		return core.Budget{}, err
	}
	now := s.deps.now()
	b.CreatedAt = now
	b.UpdatedAt = now

	id, err := s.budgets.Insert(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	b.ID = id
	s.log.InfoContext(ctx, "Budget created",
		log.FieldBudgetID, id,
		"target", b.TargetName,
		"limit", b.Limit.String())
	return b, nil
}

func (s *BudgetService) UpdateBudget(ctx context.Context, id string, edit BudgetEdit) (core.Budget, error) {
	current, err := s.budgets.Get(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	if edit.Limit != nil {
		current.Limit = *edit.Limit
	}
	if edit.AlertThreshold != nil {
		current.AlertThreshold = *edit.AlertThreshold
	}
	if err := current.Validate(); err != nil {
		return core.Budget{}, err
	}
	current.UpdatedAt = s.deps.now()
	err = s.budgets.Update(ctx, id, store.Patch{
		"limit":          current.Limit,
		"alertThreshold": current.AlertThreshold,
		"updatedAt":      current.UpdatedAt,
	})
	if err != nil {
		return core.Budget{}, err
	}
	return current, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, id string) error {
	return s.budgets.Delete(ctx, id)
}

func (s *BudgetService) Get(ctx context.Context, id string) (core.Budget, error) {
	return s.budgets.Get(ctx, id)
}

func validateTarget(b core.Budget) error {
	var ok bool
	switch b.TargetType {
	case core.TargetCategory:
		ok = catalog.HasCategory(b.Unit, b.TargetName)
	case core.TargetConcept:
		ok = catalog.HasConcept(b.Unit, b.TargetName)
	}
	if !ok {
		return fmt.Errorf("%w: budget target %s %q", core.ErrInvalidClassification, b.TargetType, b.TargetName)
	}
	return nil
}
