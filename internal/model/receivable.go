package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivableInvoice is an outstanding invoice as reported by the external
// invoicing system. Read-only: runway never owns or mutates these.
type ReceivableInvoice struct {
	InvoiceID string
	ClientID  string
	Client    string
	Amount    decimal.Decimal
	IssueDate time.Time
	DueDate   time.Time
	// Terms is the payment-terms code from the invoicing system,
	// e.g. "net_15", "net_30", "due_on_receipt".
	Terms  string
	Status string
}

// Confidence is the collection-confidence tier of an AR estimate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ARStatus buckets an invoice by how far past due it is.
type ARStatus string

const (
	ARCurrent     ARStatus = "current"     // not yet due
	AROverdue     ARStatus = "overdue"     // 1-90 days past due
	ARCollections ARStatus = "collections" // >90 days past due
)

// AREstimate is a week-bucketed collection estimate derived from one
// invoice. Always a transient projection: recomputed in full on every
// refresh, never persisted.
type AREstimate struct {
	InvoiceID      string
	Client         string
	Amount         decimal.Decimal // confidence-adjusted
	OriginalAmount decimal.Decimal
	CollectionDate time.Time
	Confidence     Confidence
	Status         ARStatus
	DaysOverdue    int
	WeekIndex      int
}
