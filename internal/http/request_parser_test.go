package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/store"
)

func TestParseTransactionFilter(t *testing.T) {
	tests := []struct {
		name       string
		query      url.Values
		want       store.TransactionFilter
		wantStatus int
	}{
		{
			name:  "empty query",
			query: url.Values{},
			want:  store.TransactionFilter{},
		},
		{
			name: "all fields",
			query: url.Values{
				"from": {"2024-03-01"}, "to": {"2024-03-31"}, "type": {" Expense "},
				"category": {"food"}, "item": {"rent"}, "limit": {"5"}, "order": {"oldest"},
			},
			want: store.TransactionFilter{
				From: core.NewDate(2024, 3, 1), To: core.NewDate(2024, 3, 31), Type: core.Expense,
				Category: "food", Item: "rent", Limit: 5, Order: store.OldestFirst,
			},
		},
		{
			name:  "limit is capped",
			query: url.Values{"limit": {"100000"}},
			want:  store.TransactionFilter{Limit: maxListLimit},
		},
		{
			name:       "bad from date",
			query:      url.Values{"from": {"03/01/2024"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "to before from",
			query:      url.Values{"from": {"2024-03-10"}, "to": {"2024-03-01"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "negative limit",
			query:      url.Values{"limit": {"-1"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTransactionFilter(tt.query)
			if tt.wantStatus != 0 {
				if err == nil {
					t.Fatalf("expected error, got filter %+v", got)
				}
				if status, _ := errorResponse(err); status != tt.wantStatus {
					t.Errorf("status = %d, want %d (%v)", status, tt.wantStatus, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("filter = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBillFilter(t *testing.T) {
	f, err := parseBillFilter(url.Values{"from": {"2024-03-01"}, "unpaid": {"true"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.From.Equal(core.NewDate(2024, 3, 1)) || !f.UnpaidOnly {
		t.Errorf("filter = %+v", f)
	}

	if _, err := parseBillFilter(url.Values{"unpaid": {"maybe"}}); err == nil {
		t.Error("expected error for bad unpaid flag")
	}
}

func TestParsePeriodParam(t *testing.T) {
	today := core.NewDate(2024, 3, 15)

	p, err := parsePeriodParam(url.Values{}, today)
	if err != nil || p != (core.Period{Year: 2024, Month: time.March}) {
		t.Errorf("default period = %v, %v", p, err)
	}

	p, err = parsePeriodParam(url.Values{"period": {"2023-12"}}, today)
	if err != nil || p != (core.Period{Year: 2023, Month: time.December}) {
		t.Errorf("explicit period = %v, %v", p, err)
	}

	for _, bad := range []string{"2024-13", "2024-3", "March"} {
		_, err := parsePeriodParam(url.Values{"period": {bad}}, today)
		if !errors.Is(err, core.ErrInvalidPeriod) {
			t.Errorf("period %q: err = %v, want ErrInvalidPeriod", bad, err)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Date   core.Date  `json:"date"`
		Amount core.Money `json:"amount"`
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid", body: `{"date":"2024-03-15","amount":"12.50"}`},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"date":`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"dat":"2024-03-15"}`, wantStatus: http.StatusBadRequest},
		{name: "bad date is a validation error", body: `{"date":"15/03/2024"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "two objects", body: `{} {}`, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"amount":"` + strings.Repeat("1", maxBodyBytes) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dst.Amount.Cents != 1250 || dst.Date.String() != "2024-03-15" {
					t.Errorf("decoded %+v", dst)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if status, _ := errorResponse(err); status != tt.wantStatus {
				t.Errorf("status = %d, want %d (%v)", status, tt.wantStatus, err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  groceries  ":     "groceries",
		"rent\x00\x07":      "rent",
		"line1\nline2\tend": "line1\nline2\tend",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
