// Package services implements the finance operations that write: ledger
// posting and corrections, account management, the service registry and
// budget definitions. Reads for display go through internal/live and the
// pure functions in internal/dashboard.
package services

import (
	"context"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/metrics"
	"finanzas/internal/store"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, env *amqp.Envelope) error
}

// Deps are the collaborators shared by every service. Publisher, Metrics
// and Logger are optional.
type Deps struct {
	Store     store.DocumentStore
	Publisher EventPublisher
	Metrics   *metrics.Collector
	Logger    *log.Logger
	Clock     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now().UTC()
}

func (d Deps) logger(component string) *log.Logger {
	if d.Logger != nil {
		return d.Logger.WithComponent(component)
	}
	return log.FromSlog(slog.Default(), component)
}

// publishLedger sends a transaction event. Failures are logged and counted
// but never returned: the write it describes has already been committed.
func (d Deps) publishLedger(ctx context.Context, l *log.Logger, eventType string, tx core.Transaction, prev *core.Transaction) {
	if d.Publisher == nil {
		l.DebugContext(ctx, "Event publisher not configured, skipping event", log.FieldEventType, eventType)
		return
	}
	env, err := amqp.NewLedgerEnvelope(eventType, amqp.LedgerEvent{Transaction: tx, Previous: prev})
	if err == nil {
		err = d.Publisher.Publish(ctx, env)
	}
	d.Metrics.EventPublished(eventType, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventType, eventType,
			log.FieldTransactionID, tx.ID,
			log.FieldError, err)
	}
}

func (d Deps) publishService(ctx context.Context, l *log.Logger, ev amqp.ServiceEvent) {
	if d.Publisher == nil {
		return
	}
	env, err := amqp.NewServiceEnvelope(ev)
	if err == nil {
		err = d.Publisher.Publish(ctx, env)
	}
	d.Metrics.EventPublished(amqp.EventServiceStatusChanged, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to publish service event",
			log.FieldServiceID, ev.ServiceID,
			log.FieldError, err)
	}
}
