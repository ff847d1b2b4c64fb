//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"ledger/internal/core"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ExportFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}
	if cfg.CredentialsJSON == "" && cfg.CredentialsFile == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader() error = %v", err)
	}

	tx := core.Transaction{
		ID:        core.NewID(),
		UserID:    "integration",
		Type:      core.Expense,
		Category:  "Test",
		Item:      "Integration row",
		Amount:    core.ParseAmount("1.23"),
		Date:      core.DateOf(time.Now()),
		CreatedAt: time.Now(),
	}
	if err := client.Upsert(ctx, tx); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	tx.Item = "Integration row (updated)"
	if err := client.Upsert(ctx, tx); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if err := client.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}
