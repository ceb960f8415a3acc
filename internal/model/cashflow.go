package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeeklyCashflow is one row of the 13-week forecast.
// Invariant: RunningBalance[i] = RunningBalance[i-1] + Net[i], seeded by
// the starting balance before the first week.
type WeeklyCashflow struct {
	WeekIndex int
	WeekStart time.Time
	WeekEnd   time.Time

	ActualInflow     decimal.Decimal
	ActualOutflow    decimal.Decimal
	EstimatedInflow  decimal.Decimal
	EstimatedOutflow decimal.Decimal
	// ARInflow is the receivables overlay, zero unless AR is enabled.
	ARInflow decimal.Decimal

	Net            decimal.Decimal
	RunningBalance decimal.Decimal
}

// TotalInflow returns actual + estimated + AR inflow for the week.
func (w WeeklyCashflow) TotalInflow() decimal.Decimal {
	return w.ActualInflow.Add(w.EstimatedInflow).Add(w.ARInflow)
}

// TotalOutflow returns actual + estimated outflow for the week.
func (w WeeklyCashflow) TotalOutflow() decimal.Decimal {
	return w.ActualOutflow.Add(w.EstimatedOutflow)
}
