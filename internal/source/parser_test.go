package source

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

func parseCSV(t *testing.T, lines ...string) ParseResult {
	t.Helper()
	return Parse(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestParse_BasicExport(t *testing.T) {
	result := parseCSV(t,
		"Date,Description,Amount,Balance,Reference",
		"2026-08-10,GUSTO PAYROLL 8829,-12000.00,38250.20,",
		`2026-08-12,"STRIPE TRANSFER, AUG","4,512.33",42762.53,1021`,
	)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(result.Transactions))
	}
	if len(result.RowErrors) != 0 {
		t.Fatalf("row errors = %v, want none", result.RowErrors)
	}

	payroll := result.Transactions[0]
	if payroll.Direction != model.Outflow {
		t.Errorf("payroll direction = %q, want outflow", payroll.Direction)
	}
	if want := decimal.RequireFromString("12000.00"); !payroll.Amount.Equal(want) {
		t.Errorf("payroll amount = %s, want %s", payroll.Amount, want)
	}
	if payroll.Date != time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC) {
		t.Errorf("payroll date = %v", payroll.Date)
	}

	stripe := result.Transactions[1]
	if stripe.Direction != model.Inflow {
		t.Errorf("stripe direction = %q, want inflow", stripe.Direction)
	}
	if want := decimal.RequireFromString("4512.33"); !stripe.Amount.Equal(want) {
		t.Errorf("stripe amount = %s, want %s", stripe.Amount, want)
	}
	if stripe.Reference != "1021" {
		t.Errorf("stripe reference = %q, want 1021", stripe.Reference)
	}
}

func TestParse_TypeFlagOverridesSign(t *testing.T) {
	// Some exports list debits as positive numbers with a type flag.
	result := parseCSV(t,
		"Posting Date,Memo,Amount,Transaction Type",
		"08/10/2026,RENT AUGUST,3500.00,DEBIT",
	)
	if len(result.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(result.Transactions))
	}
	if result.Transactions[0].Direction != model.Outflow {
		t.Errorf("direction = %q, want outflow from DEBIT flag", result.Transactions[0].Direction)
	}
}

func TestParse_AccountingParentheses(t *testing.T) {
	result := parseCSV(t,
		"Date,Description,Amount",
		"2026-08-10,WIRE FEE,(25.00)",
	)
	tx := result.Transactions[0]
	if tx.Direction != model.Outflow {
		t.Errorf("direction = %q, want outflow", tx.Direction)
	}
	if want := decimal.RequireFromString("25.00"); !tx.Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", tx.Amount, want)
	}
}

func TestParse_MalformedRowsAreLoud(t *testing.T) {
	result := parseCSV(t,
		"Date,Description,Amount",
		"2026-08-10,OK ROW,-10.00",
		"not-a-date,BAD DATE,-10.00",
		"2026-08-11,BAD AMOUNT,ten dollars",
	)
	if len(result.Transactions) != 1 {
		t.Errorf("transactions = %d, want 1", len(result.Transactions))
	}
	if len(result.RowErrors) != 2 {
		t.Fatalf("row errors = %d, want 2", len(result.RowErrors))
	}
	if result.RowErrors[0].Line != 3 || result.RowErrors[1].Line != 4 {
		t.Errorf("row error lines = %d,%d, want 3,4", result.RowErrors[0].Line, result.RowErrors[1].Line)
	}
}

func TestParse_MissingRequiredColumns(t *testing.T) {
	result := parseCSV(t,
		"Description,Category",
		"GUSTO PAYROLL,whatever",
	)
	if result.Err == nil {
		t.Fatal("expected header error for missing date/amount columns")
	}
}

func TestParse_StableHashesAcrossReparse(t *testing.T) {
	lines := []string{
		"Date,Description,Amount",
		"2026-08-10,GUSTO PAYROLL 8829,-12000.00",
	}
	first := parseCSV(t, lines...)
	second := parseCSV(t, lines...)
	if first.Transactions[0].Hash != second.Transactions[0].Hash {
		t.Error("same row parsed twice produced different hashes")
	}
}
