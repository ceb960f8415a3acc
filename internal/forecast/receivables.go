package forecast

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

// CollectionAssumptions configures the receivables overlay. Receivables
// are opt-in: a disabled configuration produces no AR estimates.
type CollectionAssumptions struct {
	Enabled bool
	// OnTimeRate is the expected collection rate for invoices not yet
	// due, 0-1. Must be >= OverdueRate.
	OnTimeRate float64
	// OverdueRate is the expected collection rate for invoices 1-90 days
	// past due, 0-1.
	OverdueRate float64
	// AvgDelayDays is how many days late overdue invoices typically pay.
	AvgDelayDays int
}

// DefaultAssumptions returns conservative stock assumptions.
func DefaultAssumptions() CollectionAssumptions {
	return CollectionAssumptions{
		OnTimeRate:   0.90,
		OverdueRate:  0.70,
		AvgDelayDays: 14,
	}
}

// termsDueOffsets estimates a due date from the invoice issue date for
// invoices whose due date the external system did not report. Offsets run
// a few days past the nominal term to reflect observed payment behavior.
var termsDueOffsets = map[string]int{
	"net_15":         18,
	"net_30":         35,
	"due_on_receipt": 7,
}

// unknownTermsOffset is the fallback when the terms code is unrecognized.
const unknownTermsOffset = 30

// Collections-status invoices get an extra haircut and delay on top of
// the overdue adjustment.
var collectionsScale = decimal.NewFromFloat(0.5)

const collectionsExtraDelayDays = 30

// AdjustReceivables converts external invoices into week-bucketed,
// confidence-weighted collection estimates. The result is always derived
// fresh from the input snapshot; nothing is persisted or reconciled
// against earlier AR snapshots.
func AdjustReceivables(
	invoices []model.ReceivableInvoice,
	a CollectionAssumptions,
	cal *Calendar,
	now time.Time,
) []model.AREstimate {
	if !a.Enabled {
		return nil
	}

	estimates := make([]model.AREstimate, 0, len(invoices))
	for _, inv := range invoices {
		est := adjustOne(inv, a, now)
		est.WeekIndex = cal.IndexForDate(est.CollectionDate)
		estimates = append(estimates, est)
	}

	sort.Slice(estimates, func(i, j int) bool {
		if estimates[i].WeekIndex != estimates[j].WeekIndex {
			return estimates[i].WeekIndex < estimates[j].WeekIndex
		}
		return estimates[i].InvoiceID < estimates[j].InvoiceID
	})
	return estimates
}

func adjustOne(inv model.ReceivableInvoice, a CollectionAssumptions, now time.Time) model.AREstimate {
	collection, confidence := estimateCollection(inv, now)
	overdueDays := daysPastDue(inv, now)
	status := classifyStatus(overdueDays)

	amount := inv.Amount
	switch status {
	case model.ARCurrent:
		amount = amount.Mul(decimal.NewFromFloat(a.OnTimeRate))
	case model.AROverdue:
		amount = amount.Mul(decimal.NewFromFloat(a.OverdueRate))
		collection = collection.AddDate(0, 0, a.AvgDelayDays)
	case model.ARCollections:
		// Overdue adjustment first, then the collections haircut.
		amount = amount.Mul(decimal.NewFromFloat(a.OverdueRate)).Mul(collectionsScale)
		collection = collection.AddDate(0, 0, a.AvgDelayDays+collectionsExtraDelayDays)
	}

	return model.AREstimate{
		InvoiceID:      inv.InvoiceID,
		Client:         inv.Client,
		Amount:         amount,
		OriginalAmount: inv.Amount,
		CollectionDate: collection,
		Confidence:     confidence,
		Status:         status,
		DaysOverdue:    overdueDays,
	}
}

// estimateCollection derives the raw (pre-adjustment) collection date.
// Invoices not yet due collect on their due date; when the due date is
// missing it is estimated from payment terms. Past-due invoices are
// expected max(7, 30 - daysOverdue) days from now with confidence forced
// to low.
func estimateCollection(inv model.ReceivableInvoice, now time.Time) (time.Time, model.Confidence) {
	due := inv.DueDate
	confidence := model.ConfidenceHigh
	if due.IsZero() {
		offset, known := termsDueOffsets[inv.Terms]
		confidence = model.ConfidenceMedium
		if !known {
			offset = unknownTermsOffset
			confidence = model.ConfidenceLow
		}
		due = inv.IssueDate.AddDate(0, 0, offset)
	}
	if overdue := daysBetween(due, now); overdue > 0 {
		wait := 30 - overdue
		if wait < 7 {
			wait = 7
		}
		return now.AddDate(0, 0, wait), model.ConfidenceLow
	}
	return due, confidence
}

func daysPastDue(inv model.ReceivableInvoice, now time.Time) int {
	if inv.DueDate.IsZero() {
		return 0
	}
	d := daysBetween(inv.DueDate, now)
	if d < 0 {
		return 0
	}
	return d
}

func classifyStatus(daysOverdue int) model.ARStatus {
	switch {
	case daysOverdue == 0:
		return model.ARCurrent
	case daysOverdue <= 90:
		return model.AROverdue
	default:
		return model.ARCollections
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
