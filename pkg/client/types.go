package client

import (
	"ledger/internal/core"
	"ledger/internal/engine"
	"ledger/internal/services"
)

// Wire types shared with the server.
type (
	Money            = core.Money
	Date             = core.Date
	Period           = core.Period
	Transaction      = core.Transaction
	TransactionType  = core.TransactionType
	Bill             = core.Bill
	Budget           = core.Budget
	Notification     = core.Notification
	User             = core.User
	Calendar         = engine.Calendar
	Cell             = engine.Cell
	Totals           = engine.Totals
	BudgetStatus     = engine.BudgetStatus
	Session          = services.Session
	Dashboard        = services.Dashboard
	BudgetReport     = services.BudgetReport
	TransactionInput = services.TransactionInput
)

// CalendarMonth is a month grid plus the neighbouring periods.
type CalendarMonth struct {
	Calendar
	Prev Period `json:"prev"`
	Next Period `json:"next"`
}

// TransactionFilter narrows a transaction listing. Zero fields are omitted.
type TransactionFilter struct {
	From     Date
	To       Date
	Type     TransactionType
	Category string
	Item     string
	Limit    int
	Oldest   bool
}
