package memory

import (
	"context"
	"sync"

	"ledger/internal/core"
	"ledger/internal/sheets"
)

var _ sheets.Exporter = (*Exporter)(nil)

// Exporter keeps exported rows in memory. It backs the worker when no
// spreadsheet is configured and doubles as a test fake.
type Exporter struct {
	mu    sync.Mutex
	order []string
	rows  map[string]core.Transaction
}

func New() *Exporter {
	return &Exporter{rows: make(map[string]core.Transaction)}
}

func (e *Exporter) Upsert(_ context.Context, t core.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.rows[t.ID]; !exists {
		e.order = append(e.order, t.ID)
	}
	e.rows[t.ID] = t
	return nil
}

func (e *Exporter) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.rows[id]; !exists {
		return nil
	}
	delete(e.rows, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the exported row for id.
func (e *Exporter) Get(id string) (core.Transaction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.rows[id]
	return t, ok
}

// Rows returns exported transactions in first-export order.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.Transaction, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.rows[id])
	}
	return out
}
