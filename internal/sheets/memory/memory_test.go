package memory

import (
	"context"
	"testing"

	"ledger/internal/core"
)

func TestExporter_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	e := New()

	tx := core.Transaction{ID: "t1", Item: "Coffee", Amount: core.ParseAmount("3")}
	if err := e.Upsert(ctx, tx); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := e.Upsert(ctx, core.Transaction{ID: "t2", Item: "Tea"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tx.Item = "Espresso"
	if err := e.Upsert(ctx, tx); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rows := e.Rows()
	if len(rows) != 2 {
		t.Fatalf("Rows() len = %d, want 2", len(rows))
	}
	if rows[0].ID != "t1" || rows[0].Item != "Espresso" {
		t.Errorf("Rows()[0] = %+v, want t1 updated in place", rows[0])
	}

	if err := e.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := e.Get("t1"); ok {
		t.Error("Get() found deleted row")
	}
	if err := e.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of missing row error = %v, want nil", err)
	}
	if got := len(e.Rows()); got != 1 {
		t.Errorf("Rows() len = %d, want 1", got)
	}
}
