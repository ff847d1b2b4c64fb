package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
	"ledger/internal/engine"
	"ledger/internal/log"
	"ledger/internal/store"
)

const (
	latestTransactionsLimit = 5

	LabelRemaining    = "Remaining"
	LabelOverBudgetBy = "Over Budget By"

	setBudgetPrompt = "No budget set for this month. Set one in Settings to track your spending."
)

// DashboardService builds the read-only views: dashboard, calendar and chart.
// Views are cached per user and dropped on every write.
type DashboardService struct {
	store   store.Store
	budgets *BudgetService
	opts    Options
	logger  *log.Logger
}

func NewDashboardService(s store.Store, budgets *BudgetService, opts Options) *DashboardService {
	opts = opts.withDefaults()
	return &DashboardService{store: s, budgets: budgets, opts: opts, logger: opts.logger(log.ComponentCache)}
}

// BudgetPanel is the dashboard's budget summary. When HasBudget is false only
// Prompt is set.
type BudgetPanel struct {
	HasBudget bool                 `json:"has_budget"`
	Period    core.Period          `json:"period"`
	Status    *engine.BudgetStatus `json:"status,omitempty"`
	// Label is "Remaining" or "Over Budget By"; Amount is always non-negative.
	Label           string     `json:"label,omitempty"`
	Amount          core.Money `json:"amount"`
	ExceededMessage string     `json:"exceeded_message,omitempty"`
	Prompt          string     `json:"prompt,omitempty"`
}

type Dashboard struct {
	Totals  engine.Totals      `json:"totals"`
	Balance core.Money         `json:"balance"`
	Latest  []core.Transaction `json:"latest"`
	Budget  BudgetPanel        `json:"budget"`
}

// Dashboard loads the current budget status and every transaction in parallel.
func (s *DashboardService) Dashboard(ctx context.Context, userID string, today core.Date) (Dashboard, error) {
	key := "dashboard:" + today.String()
	var cached Dashboard
	gen, hit := s.cached(ctx, userID, key, &cached)
	if hit {
		return cached, nil
	}

	var (
		report       BudgetReport
		transactions []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.budgets.Status(gctx, userID, today.Period())
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, store.TransactionFilter{UserID: userID, Order: store.NewestFirst})
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	totals := engine.AggregateTotals(transactions)
	latest := transactions
	if len(latest) > latestTransactionsLimit {
		latest = latest[:latestTransactionsLimit]
	}

	d := Dashboard{
		Totals:  totals,
		Balance: totals.Balance(),
		Latest:  latest,
		Budget:  s.panel(report),
	}
	s.remember(ctx, userID, gen, key, d)
	return d, nil
}

func (s *DashboardService) panel(r BudgetReport) BudgetPanel {
	if !r.HasBudget() {
		return BudgetPanel{Period: r.Period, Prompt: setBudgetPrompt}
	}
	st := *r.Status
	p := BudgetPanel{
		HasBudget: true,
		Period:    r.Period,
		Status:    &st,
		Label:     LabelRemaining,
		Amount:    st.Remaining.Abs(),
	}
	if st.OverBudget() {
		p.Label = LabelOverBudgetBy
		p.ExceededMessage = fmt.Sprintf("You have spent %s more than your monthly budget of %s!",
			st.Remaining.Abs().Format(s.opts.Currency), st.Budget.Format(s.opts.Currency))
	}
	return p
}

// Calendar builds the month grid for the period with today highlighted.
func (s *DashboardService) Calendar(ctx context.Context, userID string, p core.Period, today core.Date) (engine.Calendar, error) {
	key := "calendar:" + p.String() + ":" + today.String()
	var cached engine.Calendar
	gen, hit := s.cached(ctx, userID, key, &cached)
	if hit {
		return cached, nil
	}

	var (
		transactions []core.Transaction
		bills        []core.Bill
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, store.ForPeriod(userID, p))
		if err != nil {
			return fmt.Errorf("list transactions for %s: %w", p, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bills, err = s.store.ListBills(gctx, store.BillFilter{UserID: userID, From: p.Start(), To: p.End()})
		if err != nil {
			return fmt.Errorf("list bills for %s: %w", p, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return engine.Calendar{}, err
	}

	cal := engine.BuildCalendar(p, transactions, bills, s.opts.Thresholds, today)
	s.remember(ctx, userID, gen, key, cal)
	return cal, nil
}

// Chart sums income and expense over all of the user's transactions.
func (s *DashboardService) Chart(ctx context.Context, userID string) (engine.Totals, error) {
	const key = "chart"
	var cached engine.Totals
	gen, hit := s.cached(ctx, userID, key, &cached)
	if hit {
		return cached, nil
	}

	transactions, err := s.store.ListTransactions(ctx, store.TransactionFilter{UserID: userID})
	if err != nil {
		return engine.Totals{}, fmt.Errorf("list transactions: %w", err)
	}
	totals := engine.AggregateTotals(transactions)
	s.remember(ctx, userID, gen, key, totals)
	return totals, nil
}

// cached looks the view up and returns the generation to store a freshly
// built one under. It must run before the store is read. A negative
// generation means the view should not be stored.
func (s *DashboardService) cached(ctx context.Context, userID, key string, dst any) (int64, bool) {
	gen, err := s.opts.Cache.Generation(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "View cache generation read failed", "key", key, log.FieldError, err)
		return -1, false
	}
	hit, err := s.opts.Cache.Get(ctx, userID, key, dst)
	if err != nil {
		s.logger.WarnContext(ctx, "View cache read failed", "key", key, log.FieldError, err)
		return gen, false
	}
	return gen, hit
}

func (s *DashboardService) remember(ctx context.Context, userID string, gen int64, key string, value any) {
	if gen < 0 {
		return
	}
	if err := s.opts.Cache.Set(ctx, userID, gen, key, value); err != nil {
		s.logger.WarnContext(ctx, "View cache write failed", "key", key, log.FieldError, err)
	}
}
