package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/catalog"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/store"
)

// LedgerService owns every write that moves an account balance. Each one
// commits the transaction record and the balance change in a single batch.
type LedgerService struct {
	deps Deps
	txs  *store.Repository[core.Transaction]
	log  *log.Logger
}

// TransactionEdit is a corrective change; nil fields are left as they are.
type TransactionEdit struct {
	Type          *core.TxType   `json:"type,omitempty"`
	Amount        *core.Money    `json:"amount,omitempty"`
	Currency      *core.Currency `json:"currency,omitempty"`
	Unit          *core.Unit     `json:"unit,omitempty"`
	Category      *string        `json:"category,omitempty"`
	Concept       *string        `json:"concept,omitempty"`
	Detail        *string        `json:"detail,omitempty"`
	DateOperation *time.Time     `json:"date_operation,omitempty"`
	Account       *string        `json:"account,omitempty"`
	PaymentMethod *string        `json:"paymentMethod,omitempty"`
	IsRecurring   *bool          `json:"isRecurring,omitempty"`
}

func NewLedgerService(deps Deps) *LedgerService {
	return &LedgerService{
		deps: deps,
		txs:  store.NewRepository[core.Transaction](deps.Store, store.Transactions),
		log:  deps.logger(log.ComponentLedger),
	}
}

// PostTransaction validates tx, assigns its id and timestamps, and commits
// it together with the balance adjustment of its account. An account that
// does not exist yet is created with the adjustment as its balance.
func (s *LedgerService) PostTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.Source == "" {
		tx.Source = core.SourceManual
	}
	if err := validateTransaction(tx); err != nil {
		s.deps.Metrics.LedgerFailure(log.OpPost)
		return core.Transaction{}, err
	}

	now := s.deps.now()
	tx.ID = store.NewID()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	tx.DateValidation = now
	if tx.DateOperation.IsZero() {
		tx.DateOperation = now
	}

	fields, err := store.Encode(tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("encode transaction: %w", err)
	}
	ops := []store.Op{store.SetOp(store.Transactions, tx.ID, fields)}
	ops = append(ops, balanceOp(tx.Account, tx.Currency, tx.SignedAmount(), now))

	if err := s.commit(ctx, log.OpPost, ops); err != nil {
		return core.Transaction{}, fmt.Errorf("post transaction: %w", err)
	}

	s.deps.Metrics.TransactionPosted(tx.Type)
	s.log.InfoContext(ctx, "Transaction posted", log.NewFields().
		WithTransaction(tx.ID, string(tx.Type), tx.Account, tx.Amount.String(), string(tx.Currency)).
		WithClassification(string(tx.Unit), tx.Category, tx.Concept).
		ToSlice()...)
	s.deps.publishLedger(ctx, s.log, amqp.EventTransactionPosted, tx, nil)
	return tx, nil
}

// UpdateTransaction applies a corrective edit and moves the balance effect
// accordingly: the old signed amount is reversed on the old account and the
// new one applied on the new account, in the same batch as the record.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, edit TransactionEdit) (core.Transaction, error) {
	old, err := s.stored(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	next := edit.applyTo(old)
	if err := validateTransaction(next); err != nil {
		s.deps.Metrics.LedgerFailure(log.OpUpdate)
		return core.Transaction{}, err
	}
	now := s.deps.now()
	next.UpdatedAt = now

	fields, err := store.Encode(next)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("encode transaction: %w", err)
	}
	patch := patchOf(fields)
	// Optional fields are omitted when empty; set them so a correction can clear them.
	patch["paymentMethod"] = next.PaymentMethod
	patch["externalId"] = next.ExternalID
	ops := []store.Op{store.UpdateOp(store.Transactions, id, patch)}
	if old.Account == next.Account {
		if delta := next.SignedAmount().Sub(old.SignedAmount()); !delta.IsZero() {
			ops = append(ops, balanceOp(next.Account, next.Currency, delta, now))
		}
	} else {
		ops = append(ops,
			balanceOp(old.Account, old.Currency, old.SignedAmount().Neg(), now),
			balanceOp(next.Account, next.Currency, next.SignedAmount(), now))
	}

	if err := s.commit(ctx, log.OpUpdate, ops); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	s.log.InfoContext(ctx, "Transaction corrected", log.NewFields().
		WithTransaction(next.ID, string(next.Type), next.Account, next.Amount.String(), string(next.Currency)).
		ToSlice()...)
	s.deps.publishLedger(ctx, s.log, amqp.EventTransactionUpdated, next, &old)
	return next, nil
}

// DeleteTransaction removes the record and reverses its balance effect.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	old, err := s.stored(ctx, id)
	if err != nil {
		return err
	}
	now := s.deps.now()
	ops := []store.Op{
		store.DeleteOp(store.Transactions, id),
		balanceOp(old.Account, old.Currency, old.SignedAmount().Neg(), now),
	}
	if err := s.commit(ctx, log.OpDelete, ops); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.log.InfoContext(ctx, "Transaction deleted", log.NewFields().
		WithTransaction(old.ID, string(old.Type), old.Account, old.Amount.String(), string(old.Currency)).
		ToSlice()...)
	s.deps.publishLedger(ctx, s.log, amqp.EventTransactionDeleted, old, nil)
	return nil
}

// Get returns a single transaction.
func (s *LedgerService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.txs.Get(ctx, id)
}

// stored loads a transaction whose balance effect is about to be reversed.
// A record without a valid type has no known effect and is refused.
func (s *LedgerService) stored(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := s.txs.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := core.ParseTxType(string(tx.Type)); err != nil {
		return core.Transaction{}, fmt.Errorf("stored transaction %s: %w", id, err)
	}
	return tx, nil
}

func (s *LedgerService) commit(ctx context.Context, op string, ops []store.Op) error {
	start := time.Now()
	err := s.deps.Store.Commit(ctx, ops)
	s.deps.Metrics.ObserveLedger(op, time.Since(start))
	if err != nil {
		s.deps.Metrics.LedgerFailure(op)
		s.log.ErrorContext(ctx, "Ledger batch failed", log.FieldOperation, op, log.FieldError, err)
	}
	return err
}

func validateTransaction(tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	return catalog.Validate(tx.Unit, tx.Category, tx.Concept)
}

// balanceOp adjusts an account balance, materializing the account as an
// active cash account named after its id when it does not exist.
func balanceOp(accountID string, currency core.Currency, delta core.Money, now time.Time) store.Op {
	return store.UpsertOp(store.Accounts, accountID, store.Patch{
		"balance":         store.Increment{By: delta},
		"updatedAt":       now,
		"name":            store.Default{Value: accountID},
		"type":            store.Default{Value: core.AccountCash},
		"currency":        store.Default{Value: currency},
		"initial_balance": store.Default{Value: core.Money{}},
		"isActive":        store.Default{Value: true},
		"createdAt":       store.Default{Value: now},
	})
}

func patchOf(f store.Fields) store.Patch {
	p := make(store.Patch, len(f))
	for k, v := range f {
		p[k] = json.RawMessage(v)
	}
	return p
}

func (e TransactionEdit) applyTo(tx core.Transaction) core.Transaction {
	if e.Type != nil {
		tx.Type = *e.Type
	}
	if e.Amount != nil {
		tx.Amount = *e.Amount
	}
	if e.Currency != nil {
		tx.Currency = *e.Currency
	}
	if e.Unit != nil {
		tx.Unit = *e.Unit
	}
	if e.Category != nil {
		tx.Category = *e.Category
	}
	if e.Concept != nil {
		tx.Concept = *e.Concept
	}
	if e.Detail != nil {
		tx.Detail = *e.Detail
	}
	if e.DateOperation != nil {
		tx.DateOperation = *e.DateOperation
	}
	if e.Account != nil {
		tx.Account = *e.Account
	}
	if e.PaymentMethod != nil {
		tx.PaymentMethod = *e.PaymentMethod
	}
	if e.IsRecurring != nil {
		tx.IsRecurring = *e.IsRecurring
	}
	return tx
}
