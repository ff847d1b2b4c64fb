package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"ledger/internal/core"
	"ledger/internal/engine"
	"ledger/pkg/client"
)

const currency = core.DefaultCurrencySymbol

func printSession(w io.Writer, s client.Session) {
	fmt.Fprintf(w, "Signed in as %s\n", s.User.Email)
	fmt.Fprintf(w, "export LEDGER_TOKEN=%s\n", s.Token)
}

func printDashboard(w io.Writer, d client.Dashboard) {
	fmt.Fprintf(w, "Income:  %s\n", d.Totals.Income.Format(currency))
	fmt.Fprintf(w, "Expense: %s\n", d.Totals.Expense.Format(currency))
	fmt.Fprintf(w, "Balance: %s\n", d.Balance.Format(currency))
	fmt.Fprintln(w)

	b := d.Budget
	switch {
	case !b.HasBudget:
		fmt.Fprintln(w, b.Prompt)
	default:
		fmt.Fprintf(w, "Budget %s: %s of %s spent (%.0f%%)\n", b.Period,
			b.Status.Spent.Format(currency), b.Status.Budget.Format(currency), b.Status.PercentSpent)
		fmt.Fprintf(w, "%s: %s\n", b.Label, b.Amount.Format(currency))
		if b.ExceededMessage != "" {
			fmt.Fprintln(w, b.ExceededMessage)
		}
	}

	if len(d.Latest) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tCATEGORY\tITEM\tAMOUNT")
	for _, t := range d.Latest {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Date, t.Type, t.Category, t.Item, t.Amount.Format(currency))
	}
	_ = tw.Flush()
}

var indicatorMarks = map[engine.Indicator]string{
	engine.None:        " ",
	engine.HighExpense: "!",
	engine.HighIncome:  "$",
	engine.BillDue:     "B",
	engine.Income:      "+",
	engine.Expense:     "-",
}

// printCalendar draws a Sunday-first grid. Each day carries its indicator
// mark; today is bracketed.
func printCalendar(w io.Writer, m client.CalendarMonth) {
	fmt.Fprintf(w, "%s  (prev %s, next %s)\n", m.Period, m.Prev, m.Next)
	fmt.Fprintln(w, " Su   Mo   Tu   We   Th   Fr   Sa")

	var row strings.Builder
	col := 0
	for ; col < m.LeadingBlanks; col++ {
		row.WriteString("     ")
	}
	for _, cell := range m.Cells {
		left, right := " ", " "
		if cell.Today {
			left, right = "[", "]"
		}
		fmt.Fprintf(&row, "%s%2d%s%s", left, cell.Day, indicatorMarks[cell.Indicator], right)
		col++
		if col == 7 {
			fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
			row.Reset()
			col = 0
		}
	}
	if row.Len() > 0 {
		fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "! high expense  $ high income  B bill due  + income  - expense")
}

func printBudget(w io.Writer, r client.BudgetReport) {
	if !r.HasBudget() {
		fmt.Fprintf(w, "No budget set for %s\n", r.Period)
		return
	}
	s := r.Status
	fmt.Fprintf(w, "Budget %s: %s\n", r.Period, s.Budget.Format(currency))
	fmt.Fprintf(w, "Spent:     %s (%.1f%%, %s)\n", s.Spent.Format(currency), s.PercentSpent, s.Severity)
	fmt.Fprintf(w, "Remaining: %s\n", s.Remaining.Format(currency))
}
