package sheets

import (
	"context"
	"time"

	"finanzas/internal/core"
)

// Header names the exported columns in the order Row.Values emits them.
var Header = []string{
	"Fecha", "Evento", "ID", "Tipo", "Cuenta", "Unidad",
	"Categoría", "Concepto", "Detalle", "Importe", "Moneda", "Origen",
}

// Row is one exported ledger event. Amount is the signed effect the event
// had on its account, so summing the column reproduces the balance changes.
type Row struct {
	Date          time.Time
	Event         string
	TransactionID string
	Type          core.TxType
	Account       string
	Unit          core.Unit
	Category      string
	Concept       string
	Detail        string
	Amount        core.Money
	Currency      core.Currency
	Source        core.Source
}

// Ports for outbound adapters.
type (
	TransactionExporter interface {
		// Export appends row and returns a reference to where it landed.
		Export(ctx context.Context, row Row) (ref string, err error)
	}
)

func NewRow(event string, tx core.Transaction, effect core.Money) Row {
	return Row{
		Date:          tx.DateOperation,
		Event:         event,
		TransactionID: tx.ID,
		Type:          tx.Type,
		Account:       tx.Account,
		Unit:          tx.Unit,
		Category:      tx.Category,
		Concept:       tx.Concept,
		Detail:        tx.Detail,
		Amount:        effect,
		Currency:      tx.Currency,
		Source:        tx.Source,
	}
}

// Values renders the row for a spreadsheet. Dates are day-first and amounts
// use a dot separator with two decimals.
func (r Row) Values() []any {
	return []any{
		r.Date.Format("02/01/2006"),
		r.Event,
		r.TransactionID,
		string(r.Type),
		r.Account,
		string(r.Unit),
		r.Category,
		r.Concept,
		r.Detail,
		r.Amount.String(),
		string(r.Currency),
		string(r.Source),
	}
}
