package engine

import "ledger/internal/core"

// Cell is one day of the month grid.
type Cell struct {
	Day       int       `json:"day"`
	Stat      DailyStat `json:"stat"`
	Indicator Indicator `json:"indicator"`
	Today     bool      `json:"today,omitempty"`
}

// Calendar is a month laid out for a Sunday-first week grid.
type Calendar struct {
	Period core.Period `json:"period"`
	// LeadingBlanks is the weekday of the 1st (Sunday = 0).
	LeadingBlanks int    `json:"leading_blanks"`
	Cells         []Cell `json:"cells"`
}

// BuildCalendar aggregates a month's records and classifies every day.
// Days without activity get a zero stat and the None indicator.
func BuildCalendar(p core.Period, transactions []core.Transaction, bills []core.Bill, th Thresholds, today core.Date) Calendar {
	stats := AggregateByDay(transactions, bills)
	numDays := p.Days()

	cal := Calendar{
		Period:        p,
		LeadingBlanks: int(p.Start().Weekday()),
		Cells:         make([]Cell, 0, numDays),
	}
	for day := 1; day <= numDays; day++ {
		stat, ok := stats[day]
		if !ok {
			stat = DailyStat{Day: day}
		}
		cal.Cells = append(cal.Cells, Cell{
			Day:       day,
			Stat:      stat,
			Indicator: th.Classify(stat),
			Today:     p.Contains(today) && today.Day() == day,
		})
	}
	return cal
}

// Weeks splits the grid into rows of seven, padding blanks with zero cells.
func (c Calendar) Weeks() [][]Cell {
	slots := make([]Cell, c.LeadingBlanks, c.LeadingBlanks+len(c.Cells)+6)
	slots = append(slots, c.Cells...)
	for len(slots)%7 != 0 {
		slots = append(slots, Cell{})
	}
	weeks := make([][]Cell, 0, len(slots)/7)
	for i := 0; i < len(slots); i += 7 {
		weeks = append(weeks, slots[i:i+7])
	}
	return weeks
}
