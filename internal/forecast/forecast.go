// Package forecast implements the 13-week cash-flow forecasting engine:
// week bucketing, transaction categorization, duplicate reconciliation,
// recurring-estimate expansion, receivables adjustment, and weekly
// aggregation. Every function is pure over in-memory values; persistence,
// parsing, and network I/O live with the callers.
package forecast

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

// Inputs is everything one forecast recomputation consumes.
type Inputs struct {
	Transactions    []model.Transaction
	Estimates       []model.Estimate
	Invoices        []model.ReceivableInvoice
	Assumptions     CollectionAssumptions
	StartingBalance decimal.Decimal
	Now             time.Time
	WeekStart       time.Weekday
}

// Result is one complete forecast snapshot.
type Result struct {
	Rows []model.WeeklyCashflow
	AR   []model.AREstimate
	Cal  *Calendar
}

// Build runs the whole engine end to end and replaces any previous
// forecast wholesale. The shell calls this whenever any input changes;
// with every step pure and cheap, the most recent call simply wins.
func Build(in Inputs) Result {
	cal := NewCalendar(in.Now, in.WeekStart)
	occurrences := ExpandAll(in.Estimates, cal)
	ar := AdjustReceivables(in.Invoices, in.Assumptions, cal, in.Now)
	rows := Aggregate(in.Transactions, occurrences, ar, in.StartingBalance, cal)
	return Result{Rows: rows, AR: ar, Cal: cal}
}
