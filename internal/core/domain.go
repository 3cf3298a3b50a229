// Package core holds the finance domain: accounts, transactions, recurring
// services and budgets, plus the closed enumerations persisted with them.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TxIncome  TxType = "income"
	TxExpense TxType = "expense"
)

const (
	ARS  Currency = "ARS"
	USD  Currency = "USD"
	USDT Currency = "USDT"
	BRL  Currency = "BRL"
)

const (
	AccountBank    AccountType = "bank"
	AccountVirtual AccountType = "virtual"
	AccountCash    AccountType = "cash"
)

const (
	SourceManual      Source = "manual"
	SourceMercadoPago Source = "mercadopago"
	SourceTelegram    Source = "telegram"
	SourceN8N         Source = "n8n"
)

type (
	TxType      string
	Currency    string
	AccountType string
	Source      string

	Account struct {
		ID             string      `json:"id"`
		Name           string      `json:"name"`
		Type           AccountType `json:"type"`
		Currency       Currency    `json:"currency"`
		Balance        Money       `json:"balance"`
		InitialBalance Money       `json:"initial_balance"`
		Color          string      `json:"color,omitempty"`
		Icon           string      `json:"icon,omitempty"`
		IsActive       bool        `json:"isActive"`
		CreatedAt      time.Time   `json:"createdAt"`
		UpdatedAt      time.Time   `json:"updatedAt"`
	}

	Transaction struct {
		ID             string    `json:"id"`
		Type           TxType    `json:"type"`
		Amount         Money     `json:"amount"`
		Currency       Currency  `json:"currency"`
		Unit           Unit      `json:"unit"`
		Category       string    `json:"category"`
		Concept        string    `json:"concept"`
		Detail         string    `json:"detail"`
		DateOperation  time.Time `json:"date_operation"`
		DateValidation time.Time `json:"date_validation"`
		Account        string    `json:"account"`
		PaymentMethod  string    `json:"paymentMethod,omitempty"`
		IsRecurring    bool      `json:"isRecurring"`
		Source         Source    `json:"source"`
		ExternalID     string    `json:"externalId,omitempty"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrMissingAccount        = errors.New("missing account")
	ErrMissingName           = errors.New("missing name")
	ErrInvalidDueDate        = errors.New("due date must be a day between 1 and 31")
	ErrInvalidClassification = errors.New("invalid classification")
	ErrInvalidEnum           = errors.New("invalid enumerated value")
	ErrInvalidLimit          = errors.New("budget limit must be positive")
	ErrInvalidThreshold      = errors.New("alert threshold must be between 0 and 100")
)

// ParseTxType accepts the persisted names only.
func ParseTxType(s string) (TxType, error) {
	switch t := TxType(strings.TrimSpace(s)); t {
	case TxIncome, TxExpense:
		return t, nil
	}
	return "", fmt.Errorf("%w: transaction type %q", ErrInvalidEnum, s)
}

func (t *TxType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseTxType, t)
}

// Sign returns +1 for income and -1 for expense.
func (t TxType) Sign() int64 {
	switch t {
	case TxIncome:
		return 1
	case TxExpense:
		return -1
	}
	panic(fmt.Sprintf("core: unknown transaction type %q", string(t)))
}

func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case ARS, USD, USDT, BRL:
		return c, nil
	}
	return "", fmt.Errorf("%w: currency %q", ErrInvalidEnum, s)
}

func (c *Currency) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseCurrency, c)
}

func ParseAccountType(s string) (AccountType, error) {
	switch a := AccountType(strings.TrimSpace(s)); a {
	case AccountBank, AccountVirtual, AccountCash:
		return a, nil
	}
	return "", fmt.Errorf("%w: account type %q", ErrInvalidEnum, s)
}

func (a *AccountType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseAccountType, a)
}

func ParseSource(s string) (Source, error) {
	switch src := Source(strings.TrimSpace(s)); src {
	case SourceManual, SourceMercadoPago, SourceTelegram, SourceN8N:
		return src, nil
	}
	return "", fmt.Errorf("%w: source %q", ErrInvalidEnum, s)
}

func (s *Source) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseSource, s)
}

// unmarshalEnum decodes a JSON string and runs it through parse so stored
// documents can never hold a value outside the closed set. An empty string
// decodes to the zero value and is rejected later by Validate.
func unmarshalEnum[T ~string](b []byte, parse func(string) (T, error), dst *T) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*dst = ""
		return nil
	}
	v, err := parse(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Validate checks the fields a posted transaction must carry. The
// classification triple is checked separately against the catalog.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrMissingAccount
	}
	if _, err := ParseTxType(string(t.Type)); err != nil {
		return err
	}
	if _, err := ParseCurrency(string(t.Currency)); err != nil {
		return err
	}
	if _, err := ParseUnit(string(t.Unit)); err != nil {
		return err
	}
	if _, err := ParseSource(string(t.Source)); err != nil {
		return err
	}
	return nil
}

// SignedAmount is the effect this transaction has on its account balance.
func (t Transaction) SignedAmount() Money {
	return Money{Cents: t.Amount.Cents * t.Type.Sign()}
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrMissingName
	}
	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return err
	}
	if _, err := ParseCurrency(string(a.Currency)); err != nil {
		return err
	}
	return nil
}
