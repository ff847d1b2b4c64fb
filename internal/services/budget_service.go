package services

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/core"
	"ledger/internal/engine"
	"ledger/internal/log"
	"ledger/internal/store"
)

// BudgetService sets and evaluates monthly budgets.
type BudgetService struct {
	store  store.Store
	opts   Options
	logger *log.Logger
}

func NewBudgetService(s store.Store, opts Options) *BudgetService {
	opts = opts.withDefaults()
	return &BudgetService{store: s, opts: opts, logger: opts.logger(log.ComponentBudget)}
}

// BudgetReport is the status of one period. Status is nil when no budget is set.
type BudgetReport struct {
	Period core.Period          `json:"period"`
	Status *engine.BudgetStatus `json:"status"`
}

// HasBudget reports whether a budget row exists for the period.
func (r BudgetReport) HasBudget() bool {
	return r.Status != nil
}

// SetBudget stores the amount for the period, replacing any earlier value.
// A zero period means the current month.
func (s *BudgetService) SetBudget(ctx context.Context, userID string, p core.Period, amount core.Money) (core.Budget, error) {
	if p.IsZero() {
		p = s.opts.today().Period()
	}
	b := core.Budget{
		UserID:    userID,
		Period:    p,
		Amount:    amount,
		UpdatedAt: s.opts.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, invalid(err)
	}

	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("save budget %s: %w", p, err)
	}
	s.opts.invalidate(ctx, userID)

	s.logger.InfoContext(ctx, "Budget set",
		log.FieldOperation, log.OpUpdate,
		log.FieldUserID, userID, log.FieldPeriod, p.String(), log.FieldAmountCents, amount.Cents)
	return b, nil
}

// Budget returns the row for the period, or nil when none is set.
func (s *BudgetService) Budget(ctx context.Context, userID string, p core.Period) (*core.Budget, error) {
	b, err := s.store.GetBudget(ctx, userID, p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load budget %s: %w", p, err)
	}
	return &b, nil
}

// Status evaluates the period's spending against its budget.
func (s *BudgetService) Status(ctx context.Context, userID string, p core.Period) (BudgetReport, error) {
	if p.IsZero() {
		p = s.opts.today().Period()
	}
	b, err := s.Budget(ctx, userID, p)
	if err != nil {
		return BudgetReport{}, err
	}
	report := BudgetReport{Period: p}
	if b == nil {
		return report, nil
	}

	transactions, err := s.store.ListTransactions(ctx, store.ForPeriod(userID, p))
	if err != nil {
		return BudgetReport{}, fmt.Errorf("list transactions for %s: %w", p, err)
	}
	if status, ok := engine.EvaluateBudget(b, transactions); ok {
		report.Status = &status
	}
	return report, nil
}
