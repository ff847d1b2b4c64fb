package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/log"
	"ledger/internal/sheets"
	"ledger/internal/store"
)

// SyncWorker mirrors transaction changes into the export sheet.
type SyncWorker struct {
	store    store.TransactionStore
	exporter sheets.Exporter
}

func NewSyncWorker(s store.TransactionStore, exporter sheets.Exporter) *SyncWorker {
	return &SyncWorker{store: s, exporter: exporter}
}

// HandleTransactionChanged processes a single change message from AMQP.
// The store is the source of truth: an upsert for a transaction that no
// longer exists is exported as a delete, so replays and reordering converge.
func (w *SyncWorker) HandleTransactionChanged(ctx context.Context, msg *amqp.TransactionChanged) error {
	slog.InfoContext(ctx, "Processing change message",
		log.FieldComponent, log.ComponentWorker,
		log.FieldTransactionID, msg.ID,
		log.FieldOperation, string(msg.Op),
		log.FieldVersion, msg.Version)

	if msg.Op == amqp.OpDelete {
		return w.delete(ctx, msg.ID)
	}

	t, err := w.store.GetTransaction(ctx, msg.UserID, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction gone before export, clearing row",
			log.FieldComponent, log.ComponentWorker, log.FieldTransactionID, msg.ID)
		return w.delete(ctx, msg.ID)
	}
	if err != nil {
		return fmt.Errorf("get transaction from store: %w", err)
	}

	if err := w.exporter.Upsert(ctx, t); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported transaction",
		log.FieldComponent, log.ComponentWorker, log.FieldTransactionID, msg.ID, log.FieldVersion, msg.Version)
	return nil
}

func (w *SyncWorker) delete(ctx context.Context, id string) error {
	if err := w.exporter.Delete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete exported transaction",
			log.FieldComponent, log.ComponentWorker, log.FieldTransactionID, id, log.FieldError, err)
		return fmt.Errorf("delete exported transaction: %w", err)
	}
	slog.InfoContext(ctx, "Successfully deleted exported transaction",
		log.FieldComponent, log.ComponentWorker, log.FieldTransactionID, id)
	return nil
}

// ExportAll re-exports every stored transaction. It is the backup path when
// change messages were lost.
func (w *SyncWorker) ExportAll(ctx context.Context) (int, error) {
	list, err := w.store.ListTransactions(ctx, store.TransactionFilter{Order: store.OldestFirst})
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	slog.InfoContext(ctx, "Exporting all transactions", log.FieldComponent, log.ComponentWorker, "count", len(list))

	exported := 0
	for _, t := range list {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if err := w.exporter.Upsert(ctx, t); err != nil {
			return exported, fmt.Errorf("export transaction %s: %w", t.ID, err)
		}
		exported++
	}
	return exported, nil
}
