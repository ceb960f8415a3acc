package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runway.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func storedTxn(desc string, day int, amount string) model.Transaction {
	date := time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
	amt := decimal.RequireFromString(amount)
	return model.Transaction{
		Hash:        model.TransactionHash(date, amt, desc),
		Date:        date,
		Amount:      amt,
		Direction:   model.Outflow,
		Description: desc,
		Category:    "Payroll",
		BankBalance: decimal.RequireFromString("40000.00"),
	}
}

func TestUpsertTransactions_SecondWriteIsNoOp(t *testing.T) {
	s := openTestStore(t)
	batch := []model.Transaction{
		storedTxn("GUSTO PAYROLL", 10, "12000.00"),
		storedTxn("AWS BILL", 12, "430.00"),
	}

	inserted, err := s.UpsertTransactions(batch)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if inserted != 2 {
		t.Errorf("first upsert inserted = %d, want 2", inserted)
	}

	inserted, err = s.UpsertTransactions(batch)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if inserted != 0 {
		t.Errorf("re-import inserted = %d, want 0", inserted)
	}

	count, err := s.TransactionCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestTransactions_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	in := storedTxn("GUSTO PAYROLL", 10, "12000.50")

	if _, err := s.UpsertTransactions([]model.Transaction{in}); err != nil {
		t.Fatal(err)
	}
	out, err := s.LoadTransactions()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("loaded = %d, want 1", len(out))
	}

	got := out[0]
	if got.Hash != in.Hash || got.Description != in.Description || got.Category != in.Category {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if !got.Amount.Equal(in.Amount) {
		t.Errorf("amount = %s, want %s", got.Amount, in.Amount)
	}
	if !got.Date.Equal(in.Date) {
		t.Errorf("date = %v, want %v", got.Date, in.Date)
	}
	if got.Direction != model.Outflow {
		t.Errorf("direction = %q, want outflow", got.Direction)
	}
}

func TestKnownHashes(t *testing.T) {
	s := openTestStore(t)
	in := storedTxn("AWS BILL", 12, "430.00")
	if _, err := s.UpsertTransactions([]model.Transaction{in}); err != nil {
		t.Fatal(err)
	}

	known, err := s.KnownHashes()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := known[in.Hash]; !ok {
		t.Error("stored hash missing from KnownHashes")
	}
	if len(known) != 1 {
		t.Errorf("known = %d, want 1", len(known))
	}
}

func TestUpdateCategory(t *testing.T) {
	s := openTestStore(t)
	in := storedTxn("MYSTERY VENDOR", 12, "75.00")
	if _, err := s.UpsertTransactions([]model.Transaction{in}); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateCategory(in.Hash, "Software & Subscriptions", "Tooling"); err != nil {
		t.Fatal(err)
	}
	out, err := s.LoadTransactions()
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Category != "Software & Subscriptions" || out[0].Subcategory != "Tooling" {
		t.Errorf("category = %q/%q after update", out[0].Category, out[0].Subcategory)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := openTestStore(t)
	in := storedTxn("AWS BILL", 12, "430.00")
	if _, err := s.UpsertTransactions([]model.Transaction{in}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTransaction(in.Hash); err != nil {
		t.Fatal(err)
	}
	count, _ := s.TransactionCount()
	if count != 0 {
		t.Errorf("count = %d after delete, want 0", count)
	}
}

func TestLatestReportedBalance(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.LatestReportedBalance()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("empty store reported a balance")
	}

	older := storedTxn("OLD", 5, "100.00")
	older.BankBalance = decimal.RequireFromString("1000.00")
	newer := storedTxn("NEW", 20, "100.00")
	newer.BankBalance = decimal.RequireFromString("2345.67")
	if _, err := s.UpsertTransactions([]model.Transaction{older, newer}); err != nil {
		t.Fatal(err)
	}

	balance, ok, err := s.LatestReportedBalance()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("no balance reported")
	}
	if want := decimal.RequireFromString("2345.67"); !balance.Equal(want) {
		t.Errorf("balance = %s, want %s", balance, want)
	}
}

func TestEstimates_RoundTripAndDelete(t *testing.T) {
	s := openTestStore(t)
	e := model.Estimate{
		ID:          uuid.New(),
		Direction:   model.Outflow,
		Amount:      decimal.RequireFromString("2000.00"),
		Category:    "Payroll",
		Description: "biweekly payroll",
		Notes:       "two staff",
		WeekIndex:   1,
		Recurring:   true,
		Recurrence:  model.RecurBiWeekly,
	}

	if err := s.SaveEstimate(e); err != nil {
		t.Fatal(err)
	}

	// Edits replace fields but keep the identifier.
	e.Amount = decimal.RequireFromString("2500.00")
	if err := s.SaveEstimate(e); err != nil {
		t.Fatal(err)
	}

	out, err := s.LoadEstimates()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("estimates = %d, want 1", len(out))
	}
	got := out[0]
	if got.ID != e.ID {
		t.Errorf("id changed across save: %s != %s", got.ID, e.ID)
	}
	if !got.Amount.Equal(e.Amount) {
		t.Errorf("amount = %s, want %s", got.Amount, e.Amount)
	}
	if got.Recurrence != model.RecurBiWeekly || !got.Recurring {
		t.Errorf("recurrence = %q recurring=%v", got.Recurrence, got.Recurring)
	}

	if err := s.DeleteEstimate(e.ID); err != nil {
		t.Fatal(err)
	}
	out, _ = s.LoadEstimates()
	if len(out) != 0 {
		t.Errorf("estimates = %d after delete, want 0", len(out))
	}
}
