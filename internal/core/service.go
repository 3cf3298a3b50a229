package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	UnitHogar       Unit = "HOGAR"
	UnitProfesional Unit = "PROFESIONAL"
	UnitBrasil      Unit = "BRASIL"
	// UnitGlobal is only valid as a budget scope.
	UnitGlobal Unit = "GLOBAL"
)

const (
	StatusPending  ServiceStatus = "PENDING"
	StatusReserved ServiceStatus = "RESERVED"
	StatusPaid     ServiceStatus = "PAID"
)

const (
	VariationUp     Variation = "up"
	VariationDown   Variation = "down"
	VariationStable Variation = "stable"
)

type (
	Unit          string
	ServiceStatus string
	Variation     string

	// Service is a recurring monthly obligation. Its status is tracked
	// independently of any transaction posted for it.
	Service struct {
		ID             string        `json:"id"`
		Name           string        `json:"name"`
		Amount         Money         `json:"amount"`
		Currency       Currency      `json:"currency"`
		Unit           Unit          `json:"unit"`
		Category       string        `json:"category"`
		Concept        string        `json:"concept"`
		Detail         string        `json:"detail"`
		DueDate        int           `json:"dueDate"`
		Status         ServiceStatus `json:"status"`
		AccountDefault string        `json:"account_default,omitempty"`
		IsAutoPay      bool          `json:"isAutoPay"`
		LastAmount     Money         `json:"last_amount"`
		Variation      Variation     `json:"variation"`
		Description    string        `json:"description,omitempty"`
		IsActive       bool          `json:"isActive"`
		CreatedAt      time.Time     `json:"createdAt"`
		UpdatedAt      time.Time     `json:"updatedAt"`
	}
)

// ParseUnit accepts the three catalog units. GLOBAL is rejected here; use
// ParseBudgetUnit where it is allowed.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToUpper(strings.TrimSpace(s))); u {
	case UnitHogar, UnitProfesional, UnitBrasil:
		return u, nil
	}
	return "", fmt.Errorf("%w: unit %q", ErrInvalidEnum, s)
}

func ParseBudgetUnit(s string) (Unit, error) {
	if Unit(strings.ToUpper(strings.TrimSpace(s))) == UnitGlobal {
		return UnitGlobal, nil
	}
	return ParseUnit(s)
}

func (u *Unit) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseBudgetUnit, u)
}

func ParseServiceStatus(s string) (ServiceStatus, error) {
	switch st := ServiceStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusReserved, StatusPaid:
		return st, nil
	}
	return "", fmt.Errorf("%w: service status %q", ErrInvalidEnum, s)
}

func (s *ServiceStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseServiceStatus, s)
}

// Next is the only status transition: PENDING -> RESERVED -> PAID -> PENDING.
// A missing or unknown status restarts the cycle at PENDING.
func (s ServiceStatus) Next() ServiceStatus {
	switch s {
	case StatusPending:
		return StatusReserved
	case StatusReserved:
		return StatusPaid
	}
	return StatusPending
}

func ParseVariation(s string) (Variation, error) {
	switch v := Variation(strings.TrimSpace(s)); v {
	case VariationUp, VariationDown, VariationStable:
		return v, nil
	}
	return "", fmt.Errorf("%w: variation %q", ErrInvalidEnum, s)
}

func (v *Variation) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseVariation, v)
}

// CompareAmounts derives the variation of next relative to prev. A previous
// amount of zero means there is nothing to compare against.
func CompareAmounts(prev, next Money) Variation {
	switch {
	case prev.IsZero():
		return VariationStable
	case next.Cents > prev.Cents:
		return VariationUp
	case next.Cents < prev.Cents:
		return VariationDown
	default:
		return VariationStable
	}
}

// WithAmount returns a copy of s carrying the new amount, the previous amount
// as LastAmount and the recomputed variation.
func (s Service) WithAmount(amount Money) Service {
	s.Variation = CompareAmounts(s.Amount, amount)
	s.LastAmount = s.Amount
	s.Amount = amount
	return s
}

// Advance returns a copy of s moved one step along the status cycle.
func (s Service) Advance() Service {
	s.Status = s.Status.Next()
	return s
}

func (s Service) IsPaid() bool { return s.Status == StatusPaid }

// DueDateIn returns the due date of s in the given month. Due days past the
// end of a short month fall on its last day.
func (s Service) DueDateIn(year int, month time.Month, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	day := s.DueDate
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if s.DueDate < 1 || s.DueDate > 31 {
		return ErrInvalidDueDate
	}
	if s.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if _, err := ParseCurrency(string(s.Currency)); err != nil {
		return err
	}
	if _, err := ParseUnit(string(s.Unit)); err != nil {
		return err
	}
	if _, err := ParseServiceStatus(string(s.Status)); err != nil {
		return err
	}
	return nil
}
