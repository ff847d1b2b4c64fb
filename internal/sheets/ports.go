package sheets

import (
	"context"

	"ledger/internal/core"
)

// Exporter mirrors transactions into an external spreadsheet, one row per
// transaction keyed by ID. Both operations are idempotent.
type Exporter interface {
	// Upsert writes the transaction over its existing row or appends a new one.
	Upsert(ctx context.Context, t core.Transaction) error
	// Delete clears the transaction's row. A missing row is not an error.
	Delete(ctx context.Context, id string) error
}

// Header is the column layout of the export sheet.
var Header = []string{"ID", "Date", "Type", "Category", "Item", "Amount", "User", "Created"}
