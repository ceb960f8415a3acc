package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

func datedTxn(desc string, day int, amount int64) model.Transaction {
	date := time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
	amt := decimal.NewFromInt(amount)
	return model.Transaction{
		Hash:        model.TransactionHash(date, amt, desc),
		Date:        date,
		Amount:      amt,
		Direction:   model.Outflow,
		Description: desc,
	}
}

func TestPartitionKnown_IdempotentImport(t *testing.T) {
	batch := []model.Transaction{
		datedTxn("GUSTO PAYROLL", 10, 12000),
		datedTxn("AWS BILL", 12, 430),
		datedTxn("RENT AUGUST", 1, 3500),
	}

	known := make(map[string]struct{})
	for _, tx := range batch {
		known[tx.Hash] = struct{}{}
	}

	p := PartitionKnown(batch, known)
	if len(p.New) != 0 {
		t.Errorf("re-import produced %d new transactions, want 0", len(p.New))
	}
	if len(p.Duplicates) != len(batch) {
		t.Errorf("duplicates = %d, want %d", len(p.Duplicates), len(batch))
	}
}

func TestPartitionKnown_SplitsMixedBatch(t *testing.T) {
	old := datedTxn("AWS BILL", 12, 430)
	fresh := datedTxn("COMCAST INTERNET", 14, 120)

	p := PartitionKnown([]model.Transaction{old, fresh}, map[string]struct{}{old.Hash: {}})
	if len(p.New) != 1 || p.New[0].Hash != fresh.Hash {
		t.Fatalf("new = %v, want just the fresh transaction", p.New)
	}
	if len(p.Duplicates) != 1 || p.Duplicates[0].Hash != old.Hash {
		t.Fatalf("duplicates = %v, want just the known transaction", p.Duplicates)
	}
}

func TestPartitionKnown_DedupsWithinBatch(t *testing.T) {
	a := datedTxn("AWS BILL", 12, 430)
	p := PartitionKnown([]model.Transaction{a, a}, nil)
	if len(p.New) != 1 || len(p.Duplicates) != 1 {
		t.Errorf("new=%d dup=%d, want 1/1 for a repeated row", len(p.New), len(p.Duplicates))
	}
}

func TestSimilarGroups_AbbreviatedDescriptions(t *testing.T) {
	// Same day, same amount, abbreviated vs spelled-out description.
	// Hashes differ but the pair must group for review.
	a := datedTxn("ACME CORP PMT", 10, 500)
	b := datedTxn("ACME CORP PAYMENT", 10, 500)
	if a.Hash == b.Hash {
		t.Fatal("test precondition: hashes should differ")
	}

	groups := SimilarGroups([]model.Transaction{a, b}, DefaultDedupeConfig())
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Errorf("group size = %d, want 2", len(groups[0]))
	}
}

func TestSimilarGroups_RespectsDateWindow(t *testing.T) {
	a := datedTxn("ACME CORP PMT", 10, 500)
	b := datedTxn("ACME CORP PAYMENT", 20, 500) // 240h apart

	groups := SimilarGroups([]model.Transaction{a, b}, DefaultDedupeConfig())
	if len(groups) != 0 {
		t.Errorf("groups = %d, want 0 for dates outside the window", len(groups))
	}
}

func TestSimilarGroups_RequiresAmountMatch(t *testing.T) {
	a := datedTxn("ACME CORP PMT", 10, 500)
	b := datedTxn("ACME CORP PAYMENT", 10, 501)

	cfg := DefaultDedupeConfig() // zero tolerance
	if groups := SimilarGroups([]model.Transaction{a, b}, cfg); len(groups) != 0 {
		t.Errorf("groups = %d, want 0 with zero amount tolerance", len(groups))
	}

	cfg.AmountTolerance = decimal.NewFromInt(5)
	if groups := SimilarGroups([]model.Transaction{a, b}, cfg); len(groups) != 1 {
		t.Errorf("groups = %d, want 1 with $5 tolerance", len(groups))
	}
}

func TestSimilarGroups_GreedyPartitionIsDeterministic(t *testing.T) {
	// Three mutual near-duplicates collapse into one group seeded by the
	// first transaction in slice order.
	a := datedTxn("ACME CORP PMT", 10, 500)
	b := datedTxn("ACME CORP PAYMENT", 10, 500)
	c := datedTxn("ACME CORP PMT 0093", 11, 500)

	groups := SimilarGroups([]model.Transaction{a, b, c}, DefaultDedupeConfig())
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Fatalf("group size = %d, want 3", len(groups[0]))
	}
	if groups[0][0].Hash != a.Hash {
		t.Error("group not seeded by first transaction in input order")
	}

	// Same input, same output: the pass is deterministic.
	again := SimilarGroups([]model.Transaction{a, b, c}, DefaultDedupeConfig())
	if len(again) != 1 || len(again[0]) != 3 {
		t.Error("second pass produced a different partition")
	}
}

func TestSimilarGroups_DifferentDirectionsNeverGroup(t *testing.T) {
	a := datedTxn("ACME CORP PMT", 10, 500)
	b := datedTxn("ACME CORP PAYMENT", 10, 500)
	b.Direction = model.Inflow

	if groups := SimilarGroups([]model.Transaction{a, b}, DefaultDedupeConfig()); len(groups) != 0 {
		t.Errorf("groups = %d, want 0 across directions", len(groups))
	}
}

func TestNormalizeDesc(t *testing.T) {
	got := normalizeDesc("  ACME-CORP  *PMT #123  ")
	want := "acme corp pmt 123"
	if got != want {
		t.Errorf("normalizeDesc = %q, want %q", got, want)
	}
}
