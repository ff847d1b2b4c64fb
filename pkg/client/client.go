// Package client is a Go client for the ledger JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryWaitMin = 500 * time.Millisecond
	DefaultRetryWaitMax = 5 * time.Second

	userAgent = "ledger-client/1"
)

// ClientOptions configures a Client. Zero values fall back to defaults.
type ClientOptions struct {
	// BaseURL is the server root, e.g. http://localhost:8081
	BaseURL string

	// Token is a session token from a previous login
	Token string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// RetryMax is the number of retries after the first attempt. Negative disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	Logger *slog.Logger
}

// Client talks to the ledger API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *retryablehttp.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the API at opts.BaseURL.
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = DefaultMaxRetries
	switch {
	case opts.RetryMax < 0:
		rc.RetryMax = 0
	case opts.RetryMax > 0:
		rc.RetryMax = opts.RetryMax
	}
	rc.RetryWaitMin = DefaultRetryWaitMin
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	rc.RetryWaitMax = DefaultRetryWaitMax
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.CheckRetry = checkRetry
	// Hand the final response back so API errors keep their status and body.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}

	return &Client{baseURL: base, http: rc, token: opts.Token}, nil
}

// checkRetry retries writes only on connection errors and 429, never after
// the server may have applied them.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil && resp.Request != nil && !idempotent(resp.Request.Method) &&
		resp.StatusCode != http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// SetToken replaces the session token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends one request and decodes the JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var rawBody any
	if payload != nil {
		rawBody = payload
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, rawBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return newError(resp.StatusCode, respBody)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type authRequest struct {
	Mode     string `json:"mode"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// Login signs in and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, authRequest{Mode: "login", Email: email, Password: password})
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, email, password, username string) (Session, error) {
	return c.authenticate(ctx, authRequest{Mode: "register", Email: email, Password: password, Username: username})
}

func (c *Client) authenticate(ctx context.Context, req authRequest) (Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/auth", nil, req, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, nil, &d)
	return d, err
}

// Calendar fetches the month grid. A zero period means the current month.
func (c *Client) Calendar(ctx context.Context, p Period) (CalendarMonth, error) {
	var m CalendarMonth
	err := c.do(ctx, http.MethodGet, "/api/calendar", periodQuery(p), nil, &m)
	return m, err
}

func (c *Client) Chart(ctx context.Context) (Totals, error) {
	var t Totals
	err := c.do(ctx, http.MethodGet, "/api/chart", nil, nil, &t)
	return t, err
}

// Budget returns the period's status. The report has no status when no
// budget is set.
func (c *Client) Budget(ctx context.Context, p Period) (BudgetReport, error) {
	var r BudgetReport
	err := c.do(ctx, http.MethodGet, "/api/budget", periodQuery(p), nil, &r)
	return r, err
}

type setBudgetRequest struct {
	Period *Period `json:"period,omitempty"`
	Amount Money   `json:"amount"`
}

// SetBudget upserts the budget for p, or the current month when p is zero.
func (c *Client) SetBudget(ctx context.Context, p Period, amount Money) (Budget, error) {
	req := setBudgetRequest{Amount: amount}
	if !p.IsZero() {
		req.Period = &p
	}
	var b Budget
	err := c.do(ctx, http.MethodPut, "/api/budget", nil, req, &b)
	return b, err
}

func (c *Client) Transactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	q := url.Values{}
	if !f.From.IsZero() {
		q.Set("from", f.From.String())
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.String())
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Item != "" {
		q.Set("item", f.Item)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Oldest {
		q.Set("order", "oldest")
	}

	var list []Transaction
	err := c.do(ctx, http.MethodGet, "/api/transactions", q, nil, &list)
	return list, err
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (Transaction, error) {
	var t Transaction
	err := c.do(ctx, http.MethodPost, "/api/transactions", nil, in, &t)
	return t, err
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (Transaction, error) {
	var t Transaction
	err := c.do(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(id), nil, in, &t)
	return t, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil, nil)
}

func periodQuery(p Period) url.Values {
	if p.IsZero() {
		return nil
	}
	return url.Values{"period": {p.String()}}
}
