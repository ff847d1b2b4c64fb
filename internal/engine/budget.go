package engine

import "ledger/internal/core"

// Severity bands the percent of budget spent for display.
type Severity int

const (
	Nominal  Severity = iota // below 75%
	Warning                  // 75% up to 100%
	Critical                 // 100% and above
)

const (
	warningPercent  = 75.0
	criticalPercent = 100.0
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "nominal"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "warning":
		*s = Warning
	case "critical":
		*s = Critical
	default:
		*s = Nominal
	}
	return nil
}

// SeverityFor returns the band for a percent spent.
func SeverityFor(percent float64) Severity {
	switch {
	case percent >= criticalPercent:
		return Critical
	case percent >= warningPercent:
		return Warning
	}
	return Nominal
}

// BudgetStatus is the derived state of one period's budget.
type BudgetStatus struct {
	Budget       core.Money `json:"budget_amount"`
	Spent        core.Money `json:"spent_amount"`
	Remaining    core.Money `json:"remaining"`
	PercentSpent float64    `json:"percent_spent"`
	// Progress is PercentSpent capped at 100 for bar rendering.
	Progress float64  `json:"progress"`
	Severity Severity `json:"severity"`
}

// OverBudget reports whether spending exceeded the budget.
func (s BudgetStatus) OverBudget() bool {
	return s.Remaining.Cents < 0
}

// ComputeBudgetStatus sums expenses against budget. Income never counts.
// Remaining may be negative. A zero budget yields 0% instead of dividing.
func ComputeBudgetStatus(budget core.Money, transactions []core.Transaction) BudgetStatus {
	var spent core.Money
	for _, t := range transactions {
		if t.Type == core.Expense {
			spent = spent.Add(t.Amount)
		}
	}
	if budget.IsNaN() {
		budget = core.Money{}
	}

	percent := 0.0
	if budget.Cents > 0 {
		percent = float64(spent.Cents) * 100 / float64(budget.Cents)
	}
	progress := percent
	if progress > 100 {
		progress = 100
	}

	return BudgetStatus{
		Budget:       budget,
		Spent:        spent,
		Remaining:    budget.Sub(spent),
		PercentSpent: percent,
		Progress:     progress,
		Severity:     SeverityFor(percent),
	}
}

// EvaluateBudget is ComputeBudgetStatus for an optional budget row. The
// boolean is false when no budget exists for the period, which callers show
// as a prompt to set one rather than as a zero budget.
func EvaluateBudget(budget *core.Budget, transactions []core.Transaction) (BudgetStatus, bool) {
	if budget == nil {
		return BudgetStatus{}, false
	}
	return ComputeBudgetStatus(budget.Amount, transactions), true
}
