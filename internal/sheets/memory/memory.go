// Package memory is an in-process export sink for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finanzas/internal/sheets"
)

type Exporter struct {
	mu   sync.Mutex
	rows []sheets.Row
	err  error
}

var _ sheets.TransactionExporter = (*Exporter)(nil)

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Export(_ context.Context, row sheets.Row) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	e.rows = append(e.rows, row)
	return fmt.Sprintf("memory!%d", len(e.rows)), nil
}

// Rows returns a copy of everything exported so far.
func (e *Exporter) Rows() []sheets.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.Row(nil), e.rows...)
}

// FailWith makes every following Export return err; nil restores it.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}
