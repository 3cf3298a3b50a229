package dashboard

import "finanzas/internal/core"

type (
	// Installment is a card purchase split into equal payments.
	Installment struct {
		Name    string `json:"name"`
		Current int    `json:"current"`
		Total   int    `json:"total"`
	}

	// Loan is a fixed-installment loan with its total amount owed.
	Loan struct {
		Name      string     `json:"name"`
		Current   int        `json:"current"`
		Total     int        `json:"total"`
		Amount    core.Money `json:"amount"`
		TotalDebt core.Money `json:"totalDebt"`
	}
)

// Percentage is current/total*100, zero for an empty plan.
func (i Installment) Percentage() float64 {
	return percentOf(i.Current, i.Total)
}

// Remaining is the number of installments still to pay.
func (i Installment) Remaining() int {
	if i.Current >= i.Total {
		return 0
	}
	return i.Total - i.Current
}

func (l Loan) Percentage() float64 {
	return percentOf(l.Current, l.Total)
}

// RemainingDebt is totalDebt - amount*current. This is a linear
// approximation and ignores interest amortization.
func (l Loan) RemainingDebt() core.Money {
	return l.TotalDebt.Sub(l.Amount.Mul(int64(l.Current)))
}

func percentOf(current, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(current) / float64(total) * 100
}
