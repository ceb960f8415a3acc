package forecast

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

func TestAggregate_EmptyInputsKeepStartingBalance(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	start := decimal.NewFromInt(50000)

	rows := Aggregate(nil, nil, nil, start, cal)
	if len(rows) != NumWeeks {
		t.Fatalf("rows = %d, want %d", len(rows), NumWeeks)
	}
	for _, r := range rows {
		if !r.Net.IsZero() {
			t.Errorf("week %d net = %s, want 0", r.WeekIndex, r.Net)
		}
		if !r.RunningBalance.Equal(start) {
			t.Errorf("week %d balance = %s, want %s", r.WeekIndex, r.RunningBalance, start)
		}
	}
}

func TestAggregate_InflowEstimateAndRunningBalance(t *testing.T) {
	// Starting balance $50,000, one +$10,000 inflow inside week 0, one
	// recurring weekly -$2,000 estimate from week 0 onward.
	cal := NewCalendar(testNow, time.Monday)
	start := decimal.NewFromInt(50000)

	w0, _ := cal.Window(0)
	txns := []model.Transaction{{
		Hash:        "t1",
		Date:        w0.Start.AddDate(0, 0, 2),
		Amount:      decimal.NewFromInt(10000),
		Direction:   model.Inflow,
		Description: "ACH CREDIT CUSTOMER",
		Category:    "Sales Revenue",
	}}

	est := model.Estimate{
		ID:         uuid.New(),
		Direction:  model.Outflow,
		Amount:     decimal.NewFromInt(2000),
		Category:   "Payroll",
		WeekIndex:  0,
		Recurring:  true,
		Recurrence: model.RecurWeekly,
	}

	rows := Aggregate(txns, ExpandAll([]model.Estimate{est}, cal), nil, start, cal)

	byIndex := make(map[int]model.WeeklyCashflow, len(rows))
	for _, r := range rows {
		byIndex[r.WeekIndex] = r
	}

	if want := decimal.NewFromInt(8000); !byIndex[0].Net.Equal(want) {
		t.Errorf("week 0 net = %s, want %s", byIndex[0].Net, want)
	}
	if want := decimal.NewFromInt(58000); !byIndex[0].RunningBalance.Equal(want) {
		t.Errorf("week 0 balance = %s, want %s", byIndex[0].RunningBalance, want)
	}
	if want := decimal.NewFromInt(-2000); !byIndex[1].Net.Equal(want) {
		t.Errorf("week 1 net = %s, want %s", byIndex[1].Net, want)
	}
	if want := decimal.NewFromInt(56000); !byIndex[1].RunningBalance.Equal(want) {
		t.Errorf("week 1 balance = %s, want %s", byIndex[1].RunningBalance, want)
	}
}

func TestAggregate_RunningBalanceInvariant(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	start := decimal.NewFromInt(12345)

	var txns []model.Transaction
	for i, w := range cal.Windows() {
		dir := model.Inflow
		if i%2 == 0 {
			dir = model.Outflow
		}
		txns = append(txns, model.Transaction{
			Hash:      w.Start.String(),
			Date:      w.Start.AddDate(0, 0, 3),
			Amount:    decimal.NewFromInt(int64(100 * (i + 1))),
			Direction: dir,
		})
	}

	rows := Aggregate(txns, nil, nil, start, cal)

	prev := start
	for _, r := range rows {
		if want := prev.Add(r.Net); !r.RunningBalance.Equal(want) {
			t.Errorf("week %d balance = %s, want prev %s + net %s", r.WeekIndex, r.RunningBalance, prev, r.Net)
		}
		prev = r.RunningBalance
	}
}

func TestAggregate_IgnoresTransactionsOutsideHorizon(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)

	old := model.Transaction{
		Hash:      "old",
		Date:      cal.HorizonStart().AddDate(0, 0, -60),
		Amount:    decimal.NewFromInt(999),
		Direction: model.Inflow,
	}
	rows := Aggregate([]model.Transaction{old}, nil, nil, decimal.Zero, cal)
	for _, r := range rows {
		if !r.ActualInflow.IsZero() {
			t.Errorf("week %d picked up a pre-horizon transaction", r.WeekIndex)
		}
	}
}

func TestAggregate_ARCountsAsInflow(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)

	ar := []model.AREstimate{{
		InvoiceID: "inv-1",
		Amount:    decimal.NewFromInt(450),
		WeekIndex: 2,
	}}
	rows := Aggregate(nil, nil, ar, decimal.Zero, cal)

	for _, r := range rows {
		switch r.WeekIndex {
		case 2:
			if want := decimal.NewFromInt(450); !r.ARInflow.Equal(want) || !r.Net.Equal(want) {
				t.Errorf("week 2 AR inflow = %s net = %s, want both %s", r.ARInflow, r.Net, want)
			}
		default:
			if !r.ARInflow.IsZero() {
				t.Errorf("week %d AR inflow = %s, want 0", r.WeekIndex, r.ARInflow)
			}
		}
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	in := Inputs{
		Transactions: []model.Transaction{{
			Hash:      "t1",
			Date:      testNow,
			Amount:    decimal.NewFromInt(1000),
			Direction: model.Inflow,
		}},
		Estimates: []model.Estimate{{
			ID:        uuid.New(),
			Direction: model.Outflow,
			Amount:    decimal.NewFromInt(300),
			WeekIndex: 1,
		}},
		Invoices: []model.ReceivableInvoice{{
			InvoiceID: "inv-1",
			Amount:    decimal.NewFromInt(500),
			IssueDate: testNow.AddDate(0, 0, -10),
			DueDate:   testNow.AddDate(0, 0, 20),
			Terms:     "net_30",
		}},
		Assumptions: CollectionAssumptions{
			Enabled: true, OnTimeRate: 0.80, OverdueRate: 0.60, AvgDelayDays: 10,
		},
		StartingBalance: decimal.NewFromInt(10000),
		Now:             testNow,
		WeekStart:       time.Monday,
	}

	res := Build(in)
	if len(res.Rows) != NumWeeks {
		t.Fatalf("rows = %d, want %d", len(res.Rows), NumWeeks)
	}
	if len(res.AR) != 1 {
		t.Fatalf("AR estimates = %d, want 1", len(res.AR))
	}

	last := res.Rows[len(res.Rows)-1]
	// 10000 + 1000 actual - 300 estimate + 400 adjusted AR
	if want := decimal.NewFromInt(11100); !last.RunningBalance.Equal(want) {
		t.Errorf("final balance = %s, want %s", last.RunningBalance, want)
	}
}
