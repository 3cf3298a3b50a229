package dashboard

import (
	"time"

	"finanzas/internal/core"
)

// Input is the set of collections a dashboard is computed from. Errors holds
// the load failures reported for any of them; missing collections are empty.
type Input struct {
	Accounts []core.Account
	Services []core.Service
	Budgets  []core.Budget
	Errors   []string
}

type Summary struct {
	TotalBalance core.Money                   `json:"totalBalance"`
	ByCurrency   map[core.Currency]core.Money `json:"byCurrency"`
	Budgets      []BudgetView                 `json:"budgets"`
	Upcoming     []Deadline                   `json:"upcoming"`
	Services     Progress                     `json:"services"`
	Errors       []string                     `json:"errors,omitempty"`
	GeneratedAt  time.Time                    `json:"generatedAt"`
}

// Build assembles the dashboard for now with at most upcoming deadlines.
func Build(in Input, now time.Time, upcoming int) Summary {
	return Summary{
		TotalBalance: TotalBalance(in.Accounts),
		ByCurrency:   TotalsByCurrency(in.Accounts),
		Budgets:      EvaluateBudgets(in.Budgets),
		Upcoming:     Deadlines(UpcomingDeadlines(in.Services, upcoming), now),
		Services:     PaidProgress(in.Services),
		Errors:       in.Errors,
		GeneratedAt:  now,
	}
}
