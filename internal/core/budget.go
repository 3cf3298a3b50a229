package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TargetCategory TargetType = "category"
	TargetConcept  TargetType = "concept"
)

const (
	BudgetOK      BudgetStatus = "ok"
	BudgetWarning BudgetStatus = "warning"
	BudgetOver    BudgetStatus = "over"
)

// PeriodMonthly is the only budget period in use.
const PeriodMonthly = "monthly"

// DefaultAlertThreshold is applied when a budget is created without one.
const DefaultAlertThreshold = 80

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(80)
)

type (
	TargetType   string
	BudgetStatus string

	// Budget is a spending limit on a category or concept. Spent is
	// maintained outside this module and only read here.
	Budget struct {
		ID             string     `json:"id"`
		TargetType     TargetType `json:"target_type"`
		TargetName     string     `json:"target_name"`
		Limit          Money      `json:"limit"`
		Currency       Currency   `json:"currency"`
		Unit           Unit       `json:"unit,omitempty"`
		Spent          Money      `json:"spent"`
		AlertThreshold int        `json:"alertThreshold"`
		Period         string     `json:"period"`
		CreatedAt      time.Time  `json:"createdAt"`
		UpdatedAt      time.Time  `json:"updatedAt"`
	}

	Evaluation struct {
		// Percentage of the limit consumed, clamped to 100.
		Percentage     float64      `json:"percentage"`
		Status         BudgetStatus `json:"status"`
		AlertTriggered bool         `json:"alertTriggered"`
	}
)

func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(strings.TrimSpace(s)); t {
	case TargetCategory, TargetConcept:
		return t, nil
	}
	return "", fmt.Errorf("%w: target type %q", ErrInvalidEnum, s)
}

func (t *TargetType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseTargetType, t)
}

// Evaluate classifies consumption: over when spent exceeds the limit,
// warning above 80 percent, ok otherwise.
func (b Budget) Evaluate() Evaluation {
	pct := decimal.Zero
	if b.Limit.IsPositive() {
		pct = b.Spent.Decimal().Div(b.Limit.Decimal()).Mul(hundred)
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}

	status := BudgetOK
	switch {
	case b.Spent.Cents > b.Limit.Cents:
		status = BudgetOver
	case pct.GreaterThan(warningThreshold):
		status = BudgetWarning
	}

	return Evaluation{
		Percentage:     pct.Round(2).InexactFloat64(),
		Status:         status,
		AlertTriggered: pct.GreaterThanOrEqual(decimal.NewFromInt(int64(b.AlertThreshold))),
	}
}

func (b Budget) Validate() error {
	if !b.Limit.IsPositive() {
		return ErrInvalidLimit
	}
	if strings.TrimSpace(b.TargetName) == "" {
		return ErrMissingName
	}
	if _, err := ParseTargetType(string(b.TargetType)); err != nil {
		return err
	}
	if _, err := ParseCurrency(string(b.Currency)); err != nil {
		return err
	}
	if b.Unit != "" {
		if _, err := ParseBudgetUnit(string(b.Unit)); err != nil {
			return err
		}
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return ErrInvalidThreshold
	}
	return nil
}
