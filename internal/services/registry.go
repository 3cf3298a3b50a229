package services

import (
	"context"
	"fmt"

	"finanzas/internal/amqp"
	"finanzas/internal/catalog"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/store"
)

// RegistryService manages recurring services and their payment status.
type RegistryService struct {
	deps     Deps
	services *store.Repository[core.Service]
	log      *log.Logger
}

// ServiceEdit changes descriptive fields. Status and amount have their own
// operations; nil fields are kept.
type ServiceEdit struct {
	Name           *string        `json:"name,omitempty"`
	Currency       *core.Currency `json:"currency,omitempty"`
	Unit           *core.Unit     `json:"unit,omitempty"`
	Category       *string        `json:"category,omitempty"`
	Concept        *string        `json:"concept,omitempty"`
	Detail         *string        `json:"detail,omitempty"`
	DueDate        *int           `json:"dueDate,omitempty"`
	AccountDefault *string        `json:"account_default,omitempty"`
	IsAutoPay      *bool          `json:"isAutoPay,omitempty"`
	Description    *string        `json:"description,omitempty"`
}

func NewRegistryService(deps Deps) *RegistryService {
	return &RegistryService{
		deps:     deps,
		services: store.NewRepository[core.Service](deps.Store, store.Services),
		log:      deps.logger(log.ComponentRegistry),
	}
}

// CreateService registers a service as active, PENDING and stable.
func (s *RegistryService) CreateService(ctx context.Context, svc core.Service) (core.Service, error) {
	svc.Status = core.StatusPending
	svc.Variation = core.VariationStable
	svc.LastAmount = core.Money{}
	svc.IsActive = true
	if err := validateService(svc); err != nil {
		return core.Service{}, err
	}
	now := s.deps.now()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	id, err := s.services.Insert(ctx, svc)
	if err != nil {
		return core.Service{}, fmt.Errorf("create service: %w", err)
	}
	svc.ID = id
	s.log.InfoContext(ctx, "Service created", log.FieldServiceID, id, "due_date", svc.DueDate)
	return svc, nil
}

// AdvanceStatus moves a service one step along PENDING, RESERVED, PAID.
func (s *RegistryService) AdvanceStatus(ctx context.Context, id string) (core.Service, error) {
	current, err := s.services.Get(ctx, id)
	if err != nil {
		return core.Service{}, err
	}
	next := current.Advance()
	next.UpdatedAt = s.deps.now()
	if err := s.services.Update(ctx, id, store.Patch{"status": next.Status, "updatedAt": next.UpdatedAt}); err != nil {
		return core.Service{}, err
	}

	s.deps.Metrics.StatusAdvanced(next.Status)
	s.log.InfoContext(ctx, "Service status advanced",
		log.FieldServiceID, id,
		"from", current.Status,
		log.FieldStatus, next.Status)
	s.deps.publishService(ctx, s.log, amqp.ServiceEvent{ServiceID: id, Name: next.Name, From: current.Status, To: next.Status})
	return next, nil
}

// UpdateAmount stores a new amount, keeping the previous one as last_amount
// and recomputing the variation.
func (s *RegistryService) UpdateAmount(ctx context.Context, id string, amount core.Money) (core.Service, error) {
	if amount.Cents < 0 {
		return core.Service{}, core.ErrInvalidAmount
	}
	current, err := s.services.Get(ctx, id)
	if err != nil {
		return core.Service{}, err
	}
	next := current.WithAmount(amount)
	next.UpdatedAt = s.deps.now()
	err = s.services.Update(ctx, id, store.Patch{
		"amount":      next.Amount,
		"last_amount": next.LastAmount,
		"variation":   next.Variation,
		"updatedAt":   next.UpdatedAt,
	})
	if err != nil {
		return core.Service{}, err
	}
	s.log.InfoContext(ctx, "Service amount updated",
		log.FieldServiceID, id,
		log.FieldAmount, next.Amount.String(),
		"variation", next.Variation)
	return next, nil
}

func (s *RegistryService) UpdateService(ctx context.Context, id string, edit ServiceEdit) (core.Service, error) {
	current, err := s.services.Get(ctx, id)
	if err != nil {
		return core.Service{}, err
	}
	next := edit.applyTo(current)
	if err := validateService(next); err != nil {
		return core.Service{}, err
	}
	next.UpdatedAt = s.deps.now()
	err = s.services.Update(ctx, id, store.Patch{
		"name":            next.Name,
		"currency":        next.Currency,
		"unit":            next.Unit,
		"category":        next.Category,
		"concept":         next.Concept,
		"detail":          next.Detail,
		"dueDate":         next.DueDate,
		"account_default": next.AccountDefault,
		"isAutoPay":       next.IsAutoPay,
		"description":     next.Description,
		"updatedAt":       next.UpdatedAt,
	})
	if err != nil {
		return core.Service{}, err
	}
	return next, nil
}

func (s *RegistryService) DeactivateService(ctx context.Context, id string) error {
	return s.services.Update(ctx, id, store.Patch{"isActive": false, "updatedAt": s.deps.now()})
}

func (s *RegistryService) DeleteService(ctx context.Context, id string) error {
	if err := s.services.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "Service deleted", log.FieldServiceID, id)
	return nil
}

func (s *RegistryService) Get(ctx context.Context, id string) (core.Service, error) {
	return s.services.Get(ctx, id)
}

func validateService(svc core.Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	return catalog.Validate(svc.Unit, svc.Category, svc.Concept)
}

func (e ServiceEdit) applyTo(s core.Service) core.Service {
	if e.Name != nil {
		s.Name = *e.Name
	}
	if e.Currency != nil {
		s.Currency = *e.Currency
	}
	if e.Unit != nil {
		s.Unit = *e.Unit
	}
	if e.Category != nil {
		s.Category = *e.Category
	}
	if e.Concept != nil {
		s.Concept = *e.Concept
	}
	if e.Detail != nil {
		s.Detail = *e.Detail
	}
	if e.DueDate != nil {
		s.DueDate = *e.DueDate
	}
	if e.AccountDefault != nil {
		s.AccountDefault = *e.AccountDefault
	}
	if e.IsAutoPay != nil {
		s.IsAutoPay = *e.IsAutoPay
	}
	if e.Description != nil {
		s.Description = *e.Description
	}
	return s
}
