package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recurrence is the repetition kind of an estimate template.
type Recurrence string

const (
	RecurNone     Recurrence = "none"
	RecurWeekly   Recurrence = "weekly"
	RecurBiWeekly Recurrence = "bi-weekly"
	RecurMonthly  Recurrence = "monthly"
)

// Estimate is a user-declared assumption about a future or past cash event.
// Recurring estimates are templates: they are expanded on demand and never
// duplicated into per-week records in storage.
type Estimate struct {
	ID          uuid.UUID
	Direction   Direction
	Amount      decimal.Decimal
	Category    string
	Description string
	Notes       string
	// WeekIndex is the target week in the forecast calendar
	// (-1 = last week, 0 = current week).
	WeekIndex int
	Recurring bool
	Recurrence Recurrence
	// DayOfMonth applies to monthly recurrence only (1-31, clamped to
	// month length at expansion time).
	DayOfMonth int
}

// Validate rejects invalid templates at creation time. Expansion assumes
// it only ever sees estimates that passed this check.
func (e Estimate) Validate() error {
	switch e.Direction {
	case Inflow, Outflow:
	default:
		return fmt.Errorf("estimate: unknown direction %q", e.Direction)
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("estimate: amount must be non-negative, got %s", e.Amount)
	}
	if !e.Recurring {
		return nil
	}
	switch e.Recurrence {
	case RecurWeekly, RecurBiWeekly:
		return nil
	case RecurMonthly:
		if e.DayOfMonth < 1 || e.DayOfMonth > 31 {
			return fmt.Errorf("estimate: day of month must be 1-31, got %d", e.DayOfMonth)
		}
		return nil
	default:
		return fmt.Errorf("estimate: unknown recurrence %q", e.Recurrence)
	}
}
