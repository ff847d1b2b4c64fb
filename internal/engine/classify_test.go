package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ledger/internal/core"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name    string
		income  int64
		expense int64
		bill    bool
		want    Indicator
	}{
		{"equal at threshold goes to income", 1000_00, 1000_00, false, HighIncome},
		{"bill only", 0, 0, true, BillDue},
		{"small income", 50_00, 0, false, Income},
		{"small expense", 0, 20_00, false, Expense},
		{"nothing", 0, 0, false, None},
		{"expense just at threshold", 0, 500_00, false, HighExpense},
		{"expense below threshold", 0, 499_99, false, Expense},
		{"high expense beats bill", 100_00, 600_00, true, HighExpense},
		{"high income beats bill", 1500_00, 10_00, true, HighIncome},
		{"expense equals income under income threshold", 600_00, 600_00, false, Income},
		{"expense high but not above income", 700_00, 600_00, true, BillDue},
		{"income below threshold with bill", 999_99, 0, true, BillDue},
		{"income and expense both small", 10_00, 20_00, false, Income},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stat := DailyStat{Income: core.Cents(tt.income), Expense: core.Cents(tt.expense), HasBillDue: tt.bill}
			assert.Equal(t, tt.want, th.Classify(stat))
		})
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	th := Thresholds{HighExpense: core.Cents(100), HighIncome: core.Cents(200)}
	assert.Equal(t, HighExpense, th.Classify(DailyStat{Expense: core.Cents(100)}))
	assert.Equal(t, HighIncome, th.Classify(DailyStat{Income: core.Cents(200)}))
}

func TestIndicatorText(t *testing.T) {
	for i := None; i <= Expense; i++ {
		b, err := i.MarshalText()
		assert.NoError(t, err)
		var back Indicator
		assert.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, i, back)
	}
	assert.Equal(t, "unknown", Indicator(42).String())
}
