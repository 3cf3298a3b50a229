// Package worker consumes ledger events and mirrors them to an export sink.
package worker

import (
	"context"
	"fmt"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/metrics"
	"finanzas/internal/sheets"
)

// Consumer is satisfied by *amqp.Client.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// ExportWorker appends one sheet row per ledger event.
type ExportWorker struct {
	exporter sheets.TransactionExporter
	metrics  *metrics.Collector
	log      *log.Logger
}

func NewExportWorker(exporter sheets.TransactionExporter, m *metrics.Collector, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		exporter: exporter,
		metrics:  m,
		log:      logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes until ctx is done or the consumer gives up.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer) error {
	w.log.InfoContext(ctx, "Export worker started")
	err := consumer.Consume(ctx, w.Handle)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("consume ledger events: %w", err)
	}
	return nil
}

// Handle is an amqp.Handler. Returning an error requeues the delivery, so
// only export failures are returned; events that can never be exported are
// logged and acknowledged.
func (w *ExportWorker) Handle(ctx context.Context, env *amqp.Envelope) error {
	if !env.IsLedger() {
		w.log.DebugContext(ctx, "Ignoring non-ledger event", log.FieldEventType, env.Type)
		return nil
	}
	ev, err := env.Ledger()
	if err != nil {
		w.log.ErrorContext(ctx, "Dropping undecodable ledger event", log.FieldEventType, env.Type, log.FieldError, err)
		return nil
	}

	if err := exportable(ev); err != nil {
		w.log.ErrorContext(ctx, "Dropping invalid ledger event", log.FieldEventType, env.Type, log.FieldError, err)
		return nil
	}

	for _, row := range RowsFor(env.Type, ev) {
		if err := w.export(ctx, env.Type, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExportWorker) export(ctx context.Context, eventType string, row sheets.Row) error {
	ref, err := w.exporter.Export(ctx, row)
	w.metrics.Exported(err)
	if err != nil {
		w.log.ErrorContext(ctx, "Export failed", log.NewFields().
			WithOperation(log.OpExport).
			WithTransaction(row.TransactionID, string(row.Type), row.Account, row.Amount.String(), string(row.Currency)).
			WithError(err).
			ToSlice()...)
		return fmt.Errorf("export %s %s: %w", eventType, row.TransactionID, err)
	}

	w.log.InfoContext(ctx, "Ledger event exported",
		log.FieldEventType, eventType,
		log.FieldTransactionID, row.TransactionID,
		"ref", ref)
	return nil
}

// RowsFor builds the export rows of a ledger event. The amount column holds
// the balance change the event caused on the row's account: the signed
// amount for a posting, its reversal for a deletion and the difference for
// a correction. A correction that moved the transaction to another account
// yields a reversal row for the old account followed by the new posting.
func RowsFor(eventType string, ev amqp.LedgerEvent) []sheets.Row {
	tx := ev.Transaction
	switch eventType {
	case amqp.EventTransactionDeleted:
		return []sheets.Row{sheets.NewRow(eventType, tx, tx.SignedAmount().Neg())}
	case amqp.EventTransactionUpdated:
		prev := ev.Previous
		if prev == nil {
			return []sheets.Row{sheets.NewRow(eventType, tx, tx.SignedAmount())}
		}
		if prev.Account == tx.Account {
			return []sheets.Row{sheets.NewRow(eventType, tx, tx.SignedAmount().Sub(prev.SignedAmount()))}
		}
		return []sheets.Row{
			sheets.NewRow(eventType, *prev, prev.SignedAmount().Neg()),
			sheets.NewRow(eventType, tx, tx.SignedAmount()),
		}
	default:
		return []sheets.Row{sheets.NewRow(eventType, tx, tx.SignedAmount())}
	}
}

func exportable(ev amqp.LedgerEvent) error {
	if _, err := core.ParseTxType(string(ev.Transaction.Type)); err != nil {
		return err
	}
	if ev.Previous != nil {
		if _, err := core.ParseTxType(string(ev.Previous.Type)); err != nil {
			return fmt.Errorf("previous: %w", err)
		}
	}
	return nil
}
