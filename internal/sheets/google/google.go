package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	ports "ledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultRowCacheTTL = 5 * time.Minute

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	// Row index cache: transaction ID -> 1-based sheet row.
	mu                 sync.Mutex
	rowIndex           map[string]int
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// Ensure interface conformance
var _ ports.Exporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully",
		log.FieldComponent, log.ComponentSheets, "sheet", cfg.SheetName)
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Transactions"
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheetName:          sheetName,
		cacheValidDuration: defaultRowCacheTTL,
	}
}

func credentialsJSON(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// EnsureHeader writes the header row when A1 is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName+"!A1:A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rowRange(1), &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	c.invalidateRowCache()
	return nil
}

// Upsert overwrites the transaction's row in place or appends a new one.
func (c *Client) Upsert(ctx context.Context, t core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if t.ID == "" {
		return errors.New("transaction id is required")
	}

	row, err := c.findRow(ctx, t.ID)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(t)}}

	if row > 0 {
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rowRange(row), vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to update row %d in sheet %s: %w", row, c.sheetName, err)
		}
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName+"!A:H", vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet %s: %w", c.sheetName, err)
	}
	c.invalidateRowCache()
	return nil
}

// Delete clears the transaction's row. Rows are not removed so other
// cached row numbers stay valid.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.rowRange(row), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear row %d in sheet %s: %w", row, c.sheetName, err)
	}

	c.mu.Lock()
	delete(c.rowIndex, id)
	c.mu.Unlock()
	return nil
}

// findRow returns the 1-based row holding id, or 0 when absent.
func (c *Client) findRow(ctx context.Context, id string) (int, error) {
	c.mu.Lock()
	if time.Now().Before(c.cacheExpiresAt) {
		row := c.rowIndex[id]
		c.mu.Unlock()
		if row > 0 {
			return row, nil
		}
	} else {
		c.mu.Unlock()
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read ids from sheet %s: %w", c.sheetName, err)
	}
	index := indexRows(resp.Values)

	c.mu.Lock()
	c.rowIndex = index
	c.cachedRowCount = len(resp.Values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	return index[id], nil
}

func (c *Client) invalidateRowCache() {
	c.mu.Lock()
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) rowRange(row int) string {
	return c.sheetName + "!A" + strconv.Itoa(row) + ":H" + strconv.Itoa(row)
}

// indexRows maps the first-column values to their 1-based row numbers.
// Blank cells and the header are skipped.
func indexRows(values [][]any) map[string]int {
	index := make(map[string]int, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(row[0]))
		if id == "" || (i == 0 && id == ports.Header[0]) {
			continue
		}
		index[id] = i + 1
	}
	return index
}

func rowValues(t core.Transaction) []any {
	return []any{
		t.ID,
		t.Date.String(),
		string(t.Type),
		t.Category,
		t.Item,
		t.Amount.Float(),
		t.UserID,
		t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
