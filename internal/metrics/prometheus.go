// Package metrics exposes the finance core counters on a private Prometheus
// registry. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finanzas/internal/core"
)

const namespace = "finanzas"

type Collector struct {
	registry          *prometheus.Registry
	transactions      *prometheus.CounterVec
	ledgerFailures    *prometheus.CounterVec
	ledgerDuration    *prometheus.HistogramVec
	statusTransitions *prometheus.CounterVec
	accountBalance    *prometheus.GaugeVec
	budgets           *prometheus.GaugeVec
	events            *prometheus.CounterVec
	exports           *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	securityEvents    *prometheus.CounterVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_posted_total",
			Help:      "Transactions posted to the ledger, by type.",
		}, []string{"type"}),
		ledgerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_failures_total",
			Help:      "Ledger operations rejected or failed, by operation.",
		}, []string{"operation"}),
		ledgerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_operation_duration_seconds",
			Help:      "Time spent committing ledger batches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		statusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_status_transitions_total",
			Help:      "Service status advances, by resulting status.",
		}, []string{"status"}),
		accountBalance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "account_balance",
			Help:      "Current account balance in major units.",
		}, []string{"account_id", "currency"}),
		budgets: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budgets",
			Help:      "Budgets per evaluation status.",
		}, []string{"status"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published, by type and result.",
		}, []string{"type", "result"}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Ledger events exported to the spreadsheet, by result.",
		}, []string{"result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
		securityEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_security_events_total",
			Help:      "Requests rate limited or flagged as suspicious, by kind.",
		}, []string{"kind"}),
	}
}

// Registry is exposed for tests and extra collectors.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) TransactionPosted(t core.TxType) {
	if c == nil {
		return
	}
	c.transactions.WithLabelValues(string(t)).Inc()
}

func (c *Collector) LedgerFailure(operation string) {
	if c == nil {
		return
	}
	c.ledgerFailures.WithLabelValues(operation).Inc()
}

func (c *Collector) ObserveLedger(operation string, d time.Duration) {
	if c == nil {
		return
	}
	c.ledgerDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) StatusAdvanced(to core.ServiceStatus) {
	if c == nil {
		return
	}
	c.statusTransitions.WithLabelValues(string(to)).Inc()
}

// SetAccountBalances replaces the balance gauges with the given accounts.
func (c *Collector) SetAccountBalances(accounts []core.Account) {
	if c == nil {
		return
	}
	c.accountBalance.Reset()
	for _, a := range accounts {
		c.accountBalance.WithLabelValues(a.ID, string(a.Currency)).Set(a.Balance.Decimal().InexactFloat64())
	}
}

// SetBudgetStatuses counts budgets per evaluation status.
func (c *Collector) SetBudgetStatuses(budgets []core.Budget) {
	if c == nil {
		return
	}
	counts := map[core.BudgetStatus]int{core.BudgetOK: 0, core.BudgetWarning: 0, core.BudgetOver: 0}
	for _, b := range budgets {
		counts[b.Evaluate().Status]++
	}
	for st, n := range counts {
		c.budgets.WithLabelValues(string(st)).Set(float64(n))
	}
}

func (c *Collector) EventPublished(eventType string, err error) {
	if c == nil {
		return
	}
	c.events.WithLabelValues(eventType, result(err)).Inc()
}

func (c *Collector) Exported(err error) {
	if c == nil {
		return
	}
	c.exports.WithLabelValues(result(err)).Inc()
}

func (c *Collector) HTTPRequest(method string, code int) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// SecurityEvent counts a rate-limited or suspicious request.
func (c *Collector) SecurityEvent(kind string) {
	if c == nil {
		return
	}
	c.securityEvents.WithLabelValues(kind).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
