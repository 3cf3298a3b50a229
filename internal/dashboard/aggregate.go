// Package dashboard derives display figures from already loaded collections.
// Everything here is pure: no I/O, no clocks other than the one passed in.
package dashboard

import (
	"sort"
	"time"

	"finanzas/internal/core"
)

// UrgentWithin is how close a deadline must be to be flagged urgent.
const UrgentWithin = 3 * 24 * time.Hour

type (
	// Deadline is a pending service with its due date resolved for a month.
	Deadline struct {
		Service core.Service `json:"service"`
		DueOn   time.Time    `json:"dueOn"`
		Urgent  bool         `json:"urgent"`
	}

	Progress struct {
		Paid       int     `json:"paid"`
		Total      int     `json:"total"`
		Percentage float64 `json:"percentage"`
	}

	BudgetView struct {
		Budget     core.Budget     `json:"budget"`
		Evaluation core.Evaluation `json:"evaluation"`
	}
)

// TotalBalance sums account balances. Currencies are not converted.
func TotalBalance(accounts []core.Account) core.Money {
	var total core.Money
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// TotalsByCurrency sums balances per currency.
func TotalsByCurrency(accounts []core.Account) map[core.Currency]core.Money {
	out := make(map[core.Currency]core.Money)
	for _, a := range accounts {
		out[a.Currency] = out[a.Currency].Add(a.Balance)
	}
	return out
}

// UpcomingDeadlines drops paid services, orders the rest by due day
// (ties keep input order) and returns at most n of them.
func UpcomingDeadlines(services []core.Service, n int) []core.Service {
	out := make([]core.Service, 0, len(services))
	for _, s := range services {
		if !s.IsPaid() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate < out[j].DueDate
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ListingOrder is the full services list: unpaid by ascending due day, then
// paid in input order whatever their due day. Ties keep input order.
func ListingOrder(services []core.Service) []core.Service {
	out := append([]core.Service(nil), services...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].IsPaid(), out[j].IsPaid()
		if pi != pj {
			return !pi
		}
		if pi {
			return false
		}
		return out[i].DueDate < out[j].DueDate
	})
	return out
}

// PaidProgress reports how many services are paid this cycle.
func PaidProgress(services []core.Service) Progress {
	p := Progress{Total: len(services)}
	for _, s := range services {
		if s.IsPaid() {
			p.Paid++
		}
	}
	if p.Total > 0 {
		p.Percentage = float64(p.Paid) / float64(p.Total) * 100
	}
	return p
}

// Deadlines resolves due dates of the given services in the month of now.
func Deadlines(services []core.Service, now time.Time) []Deadline {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]Deadline, 0, len(services))
	for _, s := range services {
		due := s.DueDateIn(now.Year(), now.Month(), now.Location())
		until := due.Sub(today)
		out = append(out, Deadline{
			Service: s,
			DueOn:   due,
			Urgent:  until >= 0 && until <= UrgentWithin,
		})
	}
	return out
}

// EvaluateBudgets pairs each budget with its evaluation.
func EvaluateBudgets(budgets []core.Budget) []BudgetView {
	out := make([]BudgetView, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, BudgetView{Budget: b, Evaluation: b.Evaluate()})
	}
	return out
}
