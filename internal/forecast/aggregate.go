package forecast

import (
	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

// Aggregate merges actual transactions, expanded estimate occurrences,
// and adjusted AR estimates into the 13-row forecast with a running
// balance seeded from startingBalance.
//
// This is a total recomputation on every call. There is no incremental
// path: inputs change, the whole sequence is rebuilt, and the running
// balance invariant holds by construction. With single-business bank
// feeds the O(transactions x weeks) cost is negligible.
func Aggregate(
	txns []model.Transaction,
	occurrences []Occurrence,
	ar []model.AREstimate,
	startingBalance decimal.Decimal,
	cal *Calendar,
) []model.WeeklyCashflow {
	rows := make([]model.WeeklyCashflow, 0, NumWeeks)
	balance := startingBalance

	for _, w := range cal.Windows() {
		row := model.WeeklyCashflow{
			WeekIndex:        w.Index,
			WeekStart:        w.Start,
			WeekEnd:          w.End,
			ActualInflow:     decimal.Zero,
			ActualOutflow:    decimal.Zero,
			EstimatedInflow:  decimal.Zero,
			EstimatedOutflow: decimal.Zero,
			ARInflow:         decimal.Zero,
		}

		// Actuals bucket by window membership, not index clamping, so
		// history older than the horizon never leaks into the first week.
		for _, t := range txns {
			if !w.Contains(t.Date) {
				continue
			}
			if t.Direction == model.Inflow {
				row.ActualInflow = row.ActualInflow.Add(t.Amount)
			} else {
				row.ActualOutflow = row.ActualOutflow.Add(t.Amount)
			}
		}

		for _, o := range occurrences {
			if o.WeekIndex != w.Index {
				continue
			}
			if o.Direction == model.Inflow {
				row.EstimatedInflow = row.EstimatedInflow.Add(o.Amount)
			} else {
				row.EstimatedOutflow = row.EstimatedOutflow.Add(o.Amount)
			}
		}

		// AR estimates are always inflow.
		for _, e := range ar {
			if e.WeekIndex == w.Index {
				row.ARInflow = row.ARInflow.Add(e.Amount)
			}
		}

		row.Net = row.TotalInflow().Sub(row.TotalOutflow())
		balance = balance.Add(row.Net)
		row.RunningBalance = balance

		rows = append(rows, row)
	}
	return rows
}
