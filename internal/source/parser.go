// Package source parses bank-export CSV files into transactions.
// It is a boundary collaborator: the forecasting engine only ever sees
// the already-typed records produced here.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

// Accepted posting-date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
}

// columns maps recognized header names to their semantic field.
// Bank exports disagree on naming; this is the extent of dialect
// handling runway does.
var columns = map[string]string{
	"date":             "date",
	"posting date":     "date",
	"post date":        "date",
	"description":      "description",
	"memo":             "description",
	"details":          "description",
	"amount":           "amount",
	"type":             "type",
	"transaction type": "type",
	"balance":          "balance",
	"running balance":  "balance",
	"check number":     "reference",
	"reference":        "reference",
	"check or slip #":  "reference",
}

// ParseFile reads one bank-export CSV and produces transactions with
// computed content hashes. Row-level failures (unparseable date,
// non-numeric amount) are collected as RowErrors; they are never
// silently coerced.
func ParseFile(path string) ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse reads bank-export CSV rows from r.
func Parse(r io.Reader) ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // banks pad rows inconsistently
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return ParseResult{Err: fmt.Errorf("reading header: %w", err)}
	}

	idx := make(map[string]int)
	for i, h := range header {
		if field, ok := columns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, taken := idx[field]; !taken {
				idx[field] = i
			}
		}
	}
	if _, ok := idx["date"]; !ok {
		return ParseResult{Err: errors.New("no date column in header")}
	}
	if _, ok := idx["amount"]; !ok {
		return ParseResult{Err: errors.New("no amount column in header")}
	}

	var result ParseResult
	line := 1
	for {
		line++
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Line: line, Reason: err.Error()})
			continue
		}

		t, rowErr := parseRow(row, idx)
		if rowErr != "" {
			result.RowErrors = append(result.RowErrors, RowError{Line: line, Reason: rowErr})
			continue
		}
		result.Transactions = append(result.Transactions, t)
	}
	return result
}

func parseRow(row []string, idx map[string]int) (model.Transaction, string) {
	get := func(field string) string {
		i, ok := idx[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := parseDate(get("date"))
	if err != nil {
		return model.Transaction{}, fmt.Sprintf("bad date %q", get("date"))
	}

	signed, err := parseAmount(get("amount"))
	if err != nil {
		return model.Transaction{}, fmt.Sprintf("bad amount %q", get("amount"))
	}

	direction := model.Inflow
	if signed.IsNegative() {
		direction = model.Outflow
	}
	// A debit/credit flag, when present, wins over the amount sign:
	// some exports list debits as positive numbers.
	switch strings.ToLower(get("type")) {
	case "debit", "dr", "withdrawal":
		direction = model.Outflow
	case "credit", "cr", "deposit":
		direction = model.Inflow
	}
	amount := signed.Abs()

	balance := decimal.Zero
	if raw := get("balance"); raw != "" {
		balance, err = parseAmount(raw)
		if err != nil {
			return model.Transaction{}, fmt.Sprintf("bad balance %q", raw)
		}
	}

	desc := get("description")
	return model.Transaction{
		Hash:        model.TransactionHash(date, amount, desc),
		Date:        date,
		Amount:      amount,
		Direction:   direction,
		Description: desc,
		BankBalance: balance,
		Reference:   get("reference"),
	}, ""
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)
	// Accounting notation: (123.45) means -123.45.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	return decimal.NewFromString(s)
}
