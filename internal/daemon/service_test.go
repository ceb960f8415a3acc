package daemon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/forecast"
	"github.com/runwaydev/runway/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Transactions:  120,
		Receivables:   4,
		EndingBalance: d("41000.00"),
	}
	curr := Snapshot{
		Transactions:  131,
		Receivables:   3,
		EndingBalance: d("43500.00"),
	}

	delta := diffSnapshots(prev, curr)
	if delta.Transactions != 11 {
		t.Fatalf("Transactions delta = %d, want 11", delta.Transactions)
	}
	if delta.Receivables != -1 {
		t.Fatalf("Receivables delta = %d, want -1", delta.Receivables)
	}
	if want := d("2500.00"); !delta.EndingBalance.Equal(want) {
		t.Fatalf("EndingBalance delta = %s, want %s", delta.EndingBalance, want)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestSnapshotFromResult(t *testing.T) {
	rows := []model.WeeklyCashflow{
		{WeekIndex: -1, Net: d("1000"), RunningBalance: d("51000")},
		{WeekIndex: 0, Net: d("-8000"), RunningBalance: d("43000")},
		{WeekIndex: 1, Net: d("2000"), RunningBalance: d("45000")},
	}
	result := forecast.Result{
		Rows: rows,
		AR:   []model.AREstimate{{InvoiceID: "inv-1"}},
	}

	snap := snapshotFromResult(result, counts{transactions: 57, estimates: 3}, time.Now())

	if snap.Transactions != 57 || snap.Estimates != 3 || snap.Receivables != 1 {
		t.Errorf("counts = %d/%d/%d", snap.Transactions, snap.Estimates, snap.Receivables)
	}
	if want := d("45000"); !snap.EndingBalance.Equal(want) {
		t.Errorf("ending balance = %s, want %s", snap.EndingBalance, want)
	}
	if want := d("50000"); !snap.StartingBalance.Equal(want) {
		t.Errorf("starting balance = %s, want %s", snap.StartingBalance, want)
	}
	if want := d("43000"); !snap.LowestBalance.Equal(want) || snap.LowestWeek != 0 {
		t.Errorf("lowest = %s in week %d", snap.LowestBalance, snap.LowestWeek)
	}
	if want := d("-5000"); !snap.NetOverHorizon.Equal(want) {
		t.Errorf("net over horizon = %s, want %s", snap.NetOverHorizon, want)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		DBPath:       "runway.db",
		Interval:     time.Hour,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}
