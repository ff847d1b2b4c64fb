package engine

import "ledger/internal/core"

// Indicator is the single display category for a calendar day.
type Indicator int

const (
	None Indicator = iota
	HighExpense
	HighIncome
	BillDue
	Income
	Expense
)

var indicatorNames = [...]string{
	None:        "none",
	HighExpense: "high_expense",
	HighIncome:  "high_income",
	BillDue:     "bill_due",
	Income:      "income",
	Expense:     "expense",
}

func (i Indicator) String() string {
	if i < 0 || int(i) >= len(indicatorNames) {
		return "unknown"
	}
	return indicatorNames[i]
}

func (i Indicator) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Indicator) UnmarshalText(b []byte) error {
	for idx, name := range indicatorNames {
		if name == string(b) {
			*i = Indicator(idx)
			return nil
		}
	}
	*i = None
	return nil
}

// Thresholds are the amounts at or above which a day is marked high.
type Thresholds struct {
	HighExpense core.Money
	HighIncome  core.Money
}

// DefaultThresholds returns 500 for expenses and 1000 for income.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighExpense: core.Cents(500_00),
		HighIncome:  core.Cents(1000_00),
	}
}

// Classify maps a day to exactly one indicator. First match wins:
//
//  1. expense > income and expense >= HighExpense -> HighExpense
//  2. income >= expense and income >= HighIncome  -> HighIncome
//  3. bill due                                    -> BillDue
//  4. income > 0                                  -> Income
//  5. expense > 0                                 -> Expense
//  6. otherwise                                   -> None
func (t Thresholds) Classify(s DailyStat) Indicator {
	income, expense := s.Income, s.Expense
	switch {
	case expense.Cmp(income) > 0 && expense.Cmp(t.HighExpense) >= 0:
		return HighExpense
	case income.Cmp(expense) >= 0 && income.Cmp(t.HighIncome) >= 0:
		return HighIncome
	case s.HasBillDue:
		return BillDue
	case income.Cmp(core.Money{}) > 0:
		return Income
	case expense.Cmp(core.Money{}) > 0:
		return Expense
	}
	return None
}
