package services

import (
	"context"
	"fmt"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/store"
)

// AccountService manages account metadata. Balances are never written
// here: they change only through LedgerService.
type AccountService struct {
	deps     Deps
	accounts *store.Repository[core.Account]
	log      *log.Logger
}

// AccountEdit changes descriptive fields only; nil fields are kept.
type AccountEdit struct {
	Name  *string           `json:"name,omitempty"`
	Type  *core.AccountType `json:"type,omitempty"`
	Color *string           `json:"color,omitempty"`
	Icon  *string           `json:"icon,omitempty"`
}

func NewAccountService(deps Deps) *AccountService {
	return &AccountService{
		deps:     deps,
		accounts: store.NewRepository[core.Account](deps.Store, store.Accounts),
		log:      deps.logger(log.ComponentAccounts),
	}
}

// CreateAccount stores a new active account whose balance starts at its
// initial balance.
func (s *AccountService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	now := s.deps.now()
	a.Balance = a.InitialBalance
	a.IsActive = true
	a.CreatedAt = now
	a.UpdatedAt = now

	id, err := s.accounts.Insert(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	a.ID = id
	s.log.InfoContext(ctx, "Account created",
		log.FieldAccountID, id,
		log.FieldCurrency, a.Currency,
		log.FieldAmount, a.InitialBalance.String())
	return a, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, id string, edit AccountEdit) (core.Account, error) {
	current, err := s.accounts.Get(ctx, id)
	if err != nil {
		return core.Account{}, err
	}
	patch := store.Patch{}
	if edit.Name != nil {
		current.Name = *edit.Name
		patch["name"] = current.Name
	}
	if edit.Type != nil {
		current.Type = *edit.Type
		patch["type"] = current.Type
	}
	if edit.Color != nil {
		current.Color = *edit.Color
		patch["color"] = current.Color
	}
	if edit.Icon != nil {
		current.Icon = *edit.Icon
		patch["icon"] = current.Icon
	}
	if err := current.Validate(); err != nil {
		return core.Account{}, err
	}
	current.UpdatedAt = s.deps.now()
	patch["updatedAt"] = current.UpdatedAt

	if err := s.accounts.Update(ctx, id, patch); err != nil {
		return core.Account{}, err
	}
	return current, nil
}

// DeactivateAccount hides an account. Accounts are never deleted.
func (s *AccountService) DeactivateAccount(ctx context.Context, id string) error {
	err := s.accounts.Update(ctx, id, store.Patch{"isActive": false, "updatedAt": s.deps.now()})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "Account deactivated", log.FieldAccountID, id)
	return nil
}

func (s *AccountService) Get(ctx context.Context, id string) (core.Account, error) {
	return s.accounts.Get(ctx, id)
}
