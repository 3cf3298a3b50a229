package core

import (
	"errors"
	"testing"
)

func TestBudgetEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		spent, limit int64
		threshold    int
		wantMin      float64
		wantMax      float64
		wantStatus   BudgetStatus
		wantAlert    bool
	}{
		{"over is clamped", 351000, 350000, 80, 100, 100, BudgetOver, true},
		{"just above eighty", 120928, 150000, 80, 80.6, 80.7, BudgetWarning, true},
		{"exactly eighty is ok", 80, 100, 90, 80, 80, BudgetOK, false},
		{"exactly limit", 100, 100, 80, 100, 100, BudgetWarning, true},
		{"empty", 0, 5000, 80, 0, 0, BudgetOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Budget{Spent: FromUnits(tt.spent), Limit: FromUnits(tt.limit), AlertThreshold: tt.threshold}
			ev := b.Evaluate()
			if ev.Percentage < tt.wantMin || ev.Percentage > tt.wantMax {
				t.Fatalf("percentage = %v, want in [%v,%v]", ev.Percentage, tt.wantMin, tt.wantMax)
			}
			if ev.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", ev.Status, tt.wantStatus)
			}
			if ev.AlertTriggered != tt.wantAlert {
				t.Fatalf("alert = %v, want %v", ev.AlertTriggered, tt.wantAlert)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{TargetType: TargetCategory, TargetName: "Auto", Limit: FromUnits(10), Currency: ARS, Unit: UnitGlobal, AlertThreshold: 80}
	if err := b.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Limit = Money{}
	if err := b.Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("Validate() = %v, want ErrInvalidLimit", err)
	}
	b.Limit = FromUnits(10)
	b.TargetType = "unit"
	if err := b.Validate(); !errors.Is(err, ErrInvalidEnum) {
		t.Fatalf("Validate() = %v, want ErrInvalidEnum", err)
	}
}
