package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

func invoice(id string, amount int64, dueInDays int) model.ReceivableInvoice {
	return model.ReceivableInvoice{
		InvoiceID: id,
		Client:    "Test Client",
		Amount:    decimal.NewFromInt(amount),
		IssueDate: testNow.AddDate(0, 0, dueInDays-30),
		DueDate:   testNow.AddDate(0, 0, dueInDays),
		Terms:     "net_30",
		Status:    "outstanding",
	}
}

func enabledAssumptions() CollectionAssumptions {
	a := DefaultAssumptions()
	a.Enabled = true
	return a
}

func TestAdjustReceivables_DisabledReturnsNothing(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	a := DefaultAssumptions() // Enabled = false

	got := AdjustReceivables([]model.ReceivableInvoice{invoice("inv-1", 1000, 10)}, a, cal, testNow)
	if got != nil {
		t.Errorf("disabled adjuster returned %d estimates, want none", len(got))
	}
}

func TestAdjustReceivables_CurrentInvoice(t *testing.T) {
	// Due in 10 days, net_30, on-time rate 90%: amount shrinks to 90%,
	// collection date stays the due date, and the week index comes from
	// the adjusted date.
	cal := NewCalendar(testNow, time.Monday)
	a := enabledAssumptions()

	got := AdjustReceivables([]model.ReceivableInvoice{invoice("inv-1", 1000, 10)}, a, cal, testNow)
	if len(got) != 1 {
		t.Fatalf("estimates = %d, want 1", len(got))
	}
	est := got[0]

	if est.Status != model.ARCurrent {
		t.Errorf("status = %q, want current", est.Status)
	}
	if want := decimal.NewFromInt(900); !est.Amount.Equal(want) {
		t.Errorf("adjusted amount = %s, want %s", est.Amount, want)
	}
	due := testNow.AddDate(0, 0, 10)
	if !est.CollectionDate.Equal(due) {
		t.Errorf("collection date = %v, want due date %v", est.CollectionDate, due)
	}
	if want := cal.IndexForDate(due); est.WeekIndex != want {
		t.Errorf("week index = %d, want %d", est.WeekIndex, want)
	}
	if est.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %q, want high", est.Confidence)
	}
}

func TestAdjustReceivables_OverdueInvoice(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	a := enabledAssumptions()

	// 20 days overdue: expected max(7, 30-20)=10 days out, plus the
	// configured average delay, at the overdue collection rate.
	got := AdjustReceivables([]model.ReceivableInvoice{invoice("inv-2", 1000, -20)}, a, cal, testNow)
	est := got[0]

	if est.Status != model.AROverdue {
		t.Errorf("status = %q, want overdue", est.Status)
	}
	if est.DaysOverdue != 20 {
		t.Errorf("days overdue = %d, want 20", est.DaysOverdue)
	}
	if want := decimal.NewFromInt(700); !est.Amount.Equal(want) {
		t.Errorf("adjusted amount = %s, want %s", est.Amount, want)
	}
	wantDate := testNow.AddDate(0, 0, 10+a.AvgDelayDays)
	if !est.CollectionDate.Equal(wantDate) {
		t.Errorf("collection date = %v, want %v", est.CollectionDate, wantDate)
	}
	if est.Confidence != model.ConfidenceLow {
		t.Errorf("confidence = %q, want low (past due)", est.Confidence)
	}
}

func TestAdjustReceivables_DeepOverdueFloorsAtSevenDays(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	a := enabledAssumptions()

	// 80 days overdue: 30-80 is negative, the expectation floors at 7.
	got := AdjustReceivables([]model.ReceivableInvoice{invoice("inv-3", 1000, -80)}, a, cal, testNow)
	wantDate := testNow.AddDate(0, 0, 7+a.AvgDelayDays)
	if !got[0].CollectionDate.Equal(wantDate) {
		t.Errorf("collection date = %v, want %v", got[0].CollectionDate, wantDate)
	}
}

func TestAdjustReceivables_CollectionsInvoice(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	a := enabledAssumptions()

	got := AdjustReceivables([]model.ReceivableInvoice{invoice("inv-4", 1000, -120)}, a, cal, testNow)
	est := got[0]

	if est.Status != model.ARCollections {
		t.Errorf("status = %q, want collections", est.Status)
	}
	// Overdue rate applied first, then the 50% collections haircut.
	if want := decimal.NewFromInt(350); !est.Amount.Equal(want) {
		t.Errorf("adjusted amount = %s, want %s", est.Amount, want)
	}
	wantDate := testNow.AddDate(0, 0, 7+a.AvgDelayDays+30)
	if !est.CollectionDate.Equal(wantDate) {
		t.Errorf("collection date = %v, want %v", est.CollectionDate, wantDate)
	}
}

func TestAdjustReceivables_ConfidenceMonotonicity(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)

	configs := []CollectionAssumptions{
		{Enabled: true, OnTimeRate: 0.90, OverdueRate: 0.70, AvgDelayDays: 14},
		{Enabled: true, OnTimeRate: 1.00, OverdueRate: 0.50, AvgDelayDays: 5},
		{Enabled: true, OnTimeRate: 0.60, OverdueRate: 0.60, AvgDelayDays: 30},
	}
	for _, a := range configs {
		invoices := []model.ReceivableInvoice{
			invoice("current", 1000, 5),
			invoice("overdue", 1000, -30),
			invoice("collections", 1000, -120),
		}
		got := AdjustReceivables(invoices, a, cal, testNow)

		byID := make(map[string]model.AREstimate, len(got))
		for _, e := range got {
			byID[e.InvoiceID] = e
		}
		if byID["collections"].Amount.GreaterThan(byID["overdue"].Amount) {
			t.Errorf("collections %s > overdue %s for %+v",
				byID["collections"].Amount, byID["overdue"].Amount, a)
		}
		if byID["overdue"].Amount.GreaterThan(byID["current"].Amount) {
			t.Errorf("overdue %s > current %s for %+v",
				byID["overdue"].Amount, byID["current"].Amount, a)
		}
	}
}

func TestAdjustReceivables_BeyondHorizonLandsInLastWeek(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	a := enabledAssumptions()

	got := AdjustReceivables([]model.ReceivableInvoice{invoice("inv-5", 1000, 200)}, a, cal, testNow)
	if got[0].WeekIndex != LastWeekIndex {
		t.Errorf("week index = %d, want clamped to %d", got[0].WeekIndex, LastWeekIndex)
	}
}

func TestAdjustReceivables_MissingDueDateUsesTerms(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	a := enabledAssumptions()

	inv := model.ReceivableInvoice{
		InvoiceID: "inv-6",
		Amount:    decimal.NewFromInt(1000),
		IssueDate: testNow.AddDate(0, 0, -5),
		Terms:     "net_15",
	}
	got := AdjustReceivables([]model.ReceivableInvoice{inv}, a, cal, testNow)
	est := got[0]

	// net_15 estimates collection 18 days after issue.
	wantDate := inv.IssueDate.AddDate(0, 0, 18)
	if !est.CollectionDate.Equal(wantDate) {
		t.Errorf("collection date = %v, want %v", est.CollectionDate, wantDate)
	}
	if est.Confidence != model.ConfidenceMedium {
		t.Errorf("confidence = %q, want medium (terms-derived)", est.Confidence)
	}

	// Unknown terms code drops to the low-confidence 30-day default.
	inv.Terms = "net_eventually"
	got = AdjustReceivables([]model.ReceivableInvoice{inv}, a, cal, testNow)
	if got[0].Confidence != model.ConfidenceLow {
		t.Errorf("confidence = %q, want low for unknown terms", got[0].Confidence)
	}
	wantDate = inv.IssueDate.AddDate(0, 0, 30)
	if !got[0].CollectionDate.Equal(wantDate) {
		t.Errorf("collection date = %v, want %v", got[0].CollectionDate, wantDate)
	}
}
