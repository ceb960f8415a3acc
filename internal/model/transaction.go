// Package model defines domain types for runway transactions, estimates, and forecasts.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money moves into or out of the account.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// hashDescLen is the number of description characters folded into the
// content hash. Bank exports truncate merchant names inconsistently past
// this point, so hashing more would break re-import stability.
const hashDescLen = 40

// Transaction is a single bank-ledger line.
// Immutable after import except for Category/Subcategory corrections.
type Transaction struct {
	Hash        string
	Date        time.Time
	Amount      decimal.Decimal // unsigned magnitude
	Direction   Direction
	Description string
	Category    string
	Subcategory string
	// BankBalance is the post-transaction account balance as reported
	// by the bank. Zero when the export omits balances.
	BankBalance decimal.Decimal
	Reference   string
}

// Signed returns the amount with its direction applied.
func (t Transaction) Signed() decimal.Decimal {
	if t.Direction == Outflow {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionHash computes the content-derived natural key for a ledger line.
// It is deterministic over (date truncated to day, amount, first 40
// description characters), so re-importing the same export yields the
// same hashes.
func TransactionHash(date time.Time, amount decimal.Decimal, description string) string {
	desc := strings.ToLower(strings.TrimSpace(description))
	if len(desc) > hashDescLen {
		desc = desc[:hashDescLen]
	}
	h := sha256.New()
	h.Write([]byte(date.Format("2006-01-02")))
	h.Write([]byte{'|'})
	h.Write([]byte(amount.String()))
	h.Write([]byte{'|'})
	h.Write([]byte(desc))
	return hex.EncodeToString(h.Sum(nil))
}
