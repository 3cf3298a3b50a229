package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		Type:     TxExpense,
		Amount:   FromUnits(1500),
		Currency: ARS,
		Unit:     UnitHogar,
		Category: "Auto",
		Concept:  "Transporte",
		Detail:   "Nafta",
		Account:  "efectivo",
		Source:   SourceManual,
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"missing account", func(tx *Transaction) { tx.Account = "  " }, ErrMissingAccount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidEnum},
		{"bad currency", func(tx *Transaction) { tx.Currency = "EUR" }, ErrInvalidEnum},
		{"global unit", func(tx *Transaction) { tx.Unit = UnitGlobal }, ErrInvalidEnum},
		{"bad source", func(tx *Transaction) { tx.Source = "" }, ErrInvalidEnum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSignedAmount(t *testing.T) {
	tx := validTransaction()
	if got := tx.SignedAmount().Cents; got != -150000 {
		t.Fatalf("expense signed amount = %d", got)
	}
	tx.Type = TxIncome
	if got := tx.SignedAmount().Cents; got != 150000 {
		t.Fatalf("income signed amount = %d", got)
	}
}

func TestEnumsRoundTrip(t *testing.T) {
	raw := `{"id":"x","type":"income","amount":10,"currency":"USDT","unit":"BRASIL","category":"c","concept":"k","detail":"","date_operation":"2025-01-02T00:00:00Z","date_validation":"2025-01-02T00:00:00Z","account":"a","isRecurring":false,"source":"n8n","createdAt":"2025-01-02T00:00:00Z","updatedAt":"2025-01-02T00:00:00Z"}`
	var tx Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tx.Type != TxIncome || tx.Currency != USDT || tx.Unit != UnitBrasil || tx.Source != SourceN8N {
		t.Fatalf("unexpected enums %+v", tx)
	}
	out, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again map[string]any
	_ = json.Unmarshal(out, &again)
	for field, want := range map[string]string{"type": "income", "currency": "USDT", "unit": "BRASIL", "source": "n8n"} {
		if again[field] != want {
			t.Fatalf("%s = %v, want %s", field, again[field], want)
		}
	}
}

func TestUnknownEnumRejectedOnDecode(t *testing.T) {
	var s Service
	err := json.Unmarshal([]byte(`{"status":"CANCELLED"}`), &s)
	if !errors.Is(err, ErrInvalidEnum) {
		t.Fatalf("expected ErrInvalidEnum, got %v", err)
	}
}

func TestAccountValidate(t *testing.T) {
	a := Account{Name: "BNA", Type: AccountBank, Currency: ARS}
	if err := a.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Name = ""
	if err := a.Validate(); !errors.Is(err, ErrMissingName) {
		t.Fatalf("Validate() = %v, want ErrMissingName", err)
	}
	a.Name = "MP"
	a.Type = "wallet"
	if err := a.Validate(); !errors.Is(err, ErrInvalidEnum) {
		t.Fatalf("Validate() = %v, want ErrInvalidEnum", err)
	}
}
