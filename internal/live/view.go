// Package live keeps in-memory snapshots of the finance collections up to
// date by following store subscriptions.
package live

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/core"
	"finanzas/internal/dashboard"
	"finanzas/internal/log"
	"finanzas/internal/metrics"
	"finanzas/internal/store"
)

// View serves the latest snapshot of each collection. Accounts and services
// are restricted to active records; accounts are ordered by name, services
// by due day and transactions newest first.
type View struct {
	repos   store.Repositories
	metrics *metrics.Collector
	log     *log.Logger

	mu           sync.RWMutex
	accounts     []core.Account
	services     []core.Service
	budgets      []core.Budget
	transactions []core.Transaction
	errs         map[string]string
	loaded       map[string]bool

	ready     chan struct{}
	readyOnce sync.Once
}

// New builds a view over repos. Collector and logger may be nil.
func New(repos store.Repositories, m *metrics.Collector, logger *log.Logger) *View {
	if logger == nil {
		logger = log.FromSlog(slog.Default(), log.ComponentLive)
	} else {
		logger = logger.WithComponent(log.ComponentLive)
	}
	return &View{
		repos:   repos,
		metrics: m,
		log:     logger,
		errs:    make(map[string]string),
		loaded:  make(map[string]bool),
		ready:   make(chan struct{}),
	}
}

// Run follows the four collections until ctx is done.
func (v *View) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return follow(ctx, v, v.repos.Accounts, store.Query[core.Account]{
			Where: func(a core.Account) bool { return a.IsActive },
			Less:  func(a, b core.Account) bool { return a.Name < b.Name },
		}, func(items []core.Account) {
			v.accounts = items
			v.metrics.SetAccountBalances(items)
		})
	})
	g.Go(func() error {
		return follow(ctx, v, v.repos.Services, store.Query[core.Service]{
			Where: func(s core.Service) bool { return s.IsActive },
			Less:  func(a, b core.Service) bool { return a.DueDate < b.DueDate },
		}, func(items []core.Service) { v.services = items })
	})
	g.Go(func() error {
		return follow(ctx, v, v.repos.Budgets, store.Query[core.Budget]{}, func(items []core.Budget) {
			v.budgets = items
			v.metrics.SetBudgetStatuses(items)
		})
	})
	g.Go(func() error {
		return follow(ctx, v, v.repos.Transactions, store.Query[core.Transaction]{
			Less: func(a, b core.Transaction) bool { return a.DateOperation.After(b.DateOperation) },
		}, func(items []core.Transaction) { v.transactions = items })
	})

	return g.Wait()
}

// follow applies every snapshot of repo under the view lock. A failed read
// empties the collection and records a load error until the next good one.
func follow[T any](ctx context.Context, v *View, repo *store.Repository[T], q store.Query[T], apply func([]T)) error {
	collection := repo.Collection()
	results, err := repo.Subscribe(ctx, q)
	if err != nil {
		v.log.ErrorContext(ctx, "Subscription failed", log.FieldCollection, collection, log.FieldError, err)
		return err
	}
	v.log.DebugContext(ctx, "Subscribed", log.FieldCollection, collection)

	for res := range results {
		v.mu.Lock()
		if res.Err != nil {
			apply([]T{})
			v.errs[collection] = "failed to load " + collection
		} else {
			apply(res.Items)
			delete(v.errs, collection)
		}
		v.loaded[collection] = true
		allLoaded := len(v.loaded) == 4
		v.mu.Unlock()

		if res.Err != nil {
			v.log.WarnContext(ctx, "Collection load failed", log.FieldCollection, collection, log.FieldError, res.Err)
		}
		if allLoaded {
			v.readyOnce.Do(func() { close(v.ready) })
		}
	}
	return nil
}

// Ready is closed once every collection has delivered a first snapshot,
// successful or not.
func (v *View) Ready() <-chan struct{} { return v.ready }

func (v *View) Accounts() []core.Account {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]core.Account(nil), v.accounts...)
}

func (v *View) Services() []core.Service {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]core.Service(nil), v.services...)
}

func (v *View) Budgets() []core.Budget {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]core.Budget(nil), v.budgets...)
}

func (v *View) Transactions() []core.Transaction {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]core.Transaction(nil), v.transactions...)
}

// Errors returns the current load errors in collection order.
func (v *View) Errors() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.errorsLocked()
}

func (v *View) errorsLocked() []string {
	if len(v.errs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(v.errs))
	for k := range v.errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = v.errs[k]
	}
	return out
}

// Input is a consistent dashboard input taken under a single read lock.
func (v *View) Input() dashboard.Input {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return dashboard.Input{
		Accounts: append([]core.Account(nil), v.accounts...),
		Services: append([]core.Service(nil), v.services...),
		Budgets:  append([]core.Budget(nil), v.budgets...),
		Errors:   v.errorsLocked(),
	}
}
