package forecast

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

// Occurrence is one concrete per-week instance of an estimate.
type Occurrence struct {
	EstimateID  uuid.UUID
	WeekIndex   int
	Amount      decimal.Decimal
	Direction   model.Direction
	Category    string
	Description string
}

// expanders dispatches recurrence kinds to their expansion functions.
// Adding a recurrence kind means adding a table entry, not editing a
// conditional chain.
var expanders = map[model.Recurrence]func(model.Estimate, *Calendar) []int{
	model.RecurWeekly:   expandWeekly,
	model.RecurBiWeekly: expandBiWeekly,
	model.RecurMonthly:  expandMonthly,
}

// Expand turns one estimate into its per-week occurrences over the
// horizon. Templates are assumed valid (model.Estimate.Validate runs at
// creation time); an unknown recurrence kind expands to nothing.
func Expand(e model.Estimate, cal *Calendar) []Occurrence {
	var indices []int
	if !e.Recurring {
		if e.WeekIndex >= FirstWeekIndex && e.WeekIndex <= LastWeekIndex {
			indices = []int{e.WeekIndex}
		}
	} else if fn, ok := expanders[e.Recurrence]; ok {
		indices = fn(e, cal)
	}

	occs := make([]Occurrence, 0, len(indices))
	for _, idx := range indices {
		occs = append(occs, Occurrence{
			EstimateID:  e.ID,
			WeekIndex:   idx,
			Amount:      e.Amount,
			Direction:   e.Direction,
			Category:    e.Category,
			Description: e.Description,
		})
	}
	return occs
}

// ExpandAll expands every estimate against the same calendar.
func ExpandAll(estimates []model.Estimate, cal *Calendar) []Occurrence {
	var occs []Occurrence
	for _, e := range estimates {
		occs = append(occs, Expand(e, cal)...)
	}
	return occs
}

// expandWeekly places one occurrence per window from the template's week
// to the horizon end, clamped to begin no earlier than the horizon start.
func expandWeekly(e model.Estimate, _ *Calendar) []int {
	start := e.WeekIndex
	if start < FirstWeekIndex {
		start = FirstWeekIndex
	}
	var indices []int
	for idx := start; idx <= LastWeekIndex; idx++ {
		indices = append(indices, idx)
	}
	return indices
}

// expandBiWeekly places occurrences every second window from the
// template's week, preserving the template's parity when the start is
// clamped into the horizon.
func expandBiWeekly(e model.Estimate, _ *Calendar) []int {
	start := e.WeekIndex
	for start < FirstWeekIndex {
		start += 2
	}
	var indices []int
	for idx := start; idx <= LastWeekIndex; idx += 2 {
		indices = append(indices, idx)
	}
	return indices
}

// expandMonthly places one occurrence per calendar month touching the
// horizon, on the template's day of month clamped to the month's actual
// length. The resulting date resolves to a week through the shared
// calendar, so a day-31 estimate can land on different week-of-month
// positions across months.
func expandMonthly(e model.Estimate, cal *Calendar) []int {
	horizonStart := cal.HorizonStart()
	horizonEnd := cal.HorizonEnd()

	var indices []int
	cursor := time.Date(horizonStart.Year(), horizonStart.Month(), 1, 0, 0, 0, 0, horizonStart.Location())
	for !cursor.After(horizonEnd) {
		occ := monthlyOccurrenceDate(e.DayOfMonth, cursor.Year(), cursor.Month(), cursor.Location())
		// The first month can extend before the horizon; those dates are
		// already in the past and out of the forecast. Dates past the far
		// end clamp forward into the last week inside IndexForDate.
		if !occ.Before(horizonStart) {
			indices = append(indices, cal.IndexForDate(occ))
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return indices
}

// monthlyOccurrenceDate places dayOfMonth within the given month,
// clamping to the month's last day when the month is too short. A day-31
// estimate lands on Sep 30, never spills into October.
func monthlyOccurrenceDate(dayOfMonth, year int, month time.Month, loc *time.Location) time.Time {
	day := dayOfMonth
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// daysInMonth returns the number of days in the given month.
// Day 0 of the next month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
