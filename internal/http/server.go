package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"ledger/internal/auth"
	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/recovery"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the API server. Every service is required.
type Deps struct {
	Ledger    *services.LedgerService
	Budgets   *services.BudgetService
	Dashboard *services.DashboardService
	Accounts  *services.AccountService
	Tokens    *auth.Tokens
	Store     Pinger

	Logger             *log.Logger
	RateLimitPerMinute int
	// Now overrides the clock used for "today". Defaults to time.Now.
	Now func() time.Time
}

type appMetrics struct {
	transactionsWritten int64
	authFailures        int64
	uptime              time.Time
}

type Server struct {
	http.Server

	ledger    *services.LedgerService
	budgets   *services.BudgetService
	dashboard *services.DashboardService
	accounts  *services.AccountService
	store     Pinger
	logger    *log.Logger
	now       func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a server ready to ListenAndServe.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Wrap(nil, log.ComponentHTTP)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		ledger:           deps.Ledger,
		budgets:          deps.Budgets,
		dashboard:        deps.Dashboard,
		accounts:         deps.Accounts,
		store:            deps.Store,
		logger:           deps.Logger.WithComponent(log.ComponentHTTP),
		now:              deps.Now,
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(deps.Logger, detector.ExtractClientIP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
			WritesOnly:        true,
		}),
		appMetrics: &appMetrics{uptime: time.Now()},
	}

	r := mux.NewRouter()
	r.NotFoundHandler = s.chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("route not found").Write(w)
	}))
	r.MethodNotAllowedHandler = s.chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		MethodNotAllowedError().Write(w)
	}))
	r.Use(recovery.Middleware, s.traceMiddleware.Middleware, security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware, detector.Middleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimiter.Middleware(detector.ExtractClientIP))
	api.HandleFunc("/auth", s.handleAuth).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(auth.Middleware(deps.Tokens))

	protected.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	protected.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/{id}", s.handleUpdateTransaction).Methods(http.MethodPut)
	protected.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	protected.HandleFunc("/bills", s.handleListBills).Methods(http.MethodGet)
	protected.HandleFunc("/bills", s.handleCreateBill).Methods(http.MethodPost)
	protected.HandleFunc("/bills/{id}", s.handleUpdateBill).Methods(http.MethodPut)
	protected.HandleFunc("/bills/{id}", s.handleDeleteBill).Methods(http.MethodDelete)
	protected.HandleFunc("/bills/{id}/paid", s.handleMarkBillPaid).Methods(http.MethodPost)

	protected.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{id}", s.handleDeleteNotification).Methods(http.MethodDelete)

	protected.HandleFunc("/budget", s.handleGetBudget).Methods(http.MethodGet)
	protected.HandleFunc("/budget", s.handleSetBudget).Methods(http.MethodPut)

	protected.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	protected.HandleFunc("/calendar", s.handleCalendar).Methods(http.MethodGet)
	protected.HandleFunc("/chart", s.handleChart).Methods(http.MethodGet)

	protected.HandleFunc("/account", s.handleGetAccount).Methods(http.MethodGet)
	protected.HandleFunc("/account", s.handleDeleteAccount).Methods(http.MethodDelete)
	protected.HandleFunc("/account/password", s.handleChangePassword).Methods(http.MethodPut)
	protected.HandleFunc("/account/email", s.handleChangeEmail).Methods(http.MethodPut)
	protected.HandleFunc("/account/data", s.handleClearData).Methods(http.MethodDelete)

	s.Handler = r
	return s
}

// chain applies the router-level middleware to handlers the router invokes
// directly (404 and 405), which mux.Use does not cover.
func (s *Server) chain(h http.Handler) http.Handler {
	return recovery.Middleware(s.traceMiddleware.Middleware(
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)))
}

func (s *Server) countTransactionWrite() {
	atomic.AddInt64(&s.appMetrics.transactionsWritten, 1)
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
		if errors.Is(shutdownErr, http.ErrServerClosed) {
			shutdownErr = nil
		}
	})

	return shutdownErr
}
