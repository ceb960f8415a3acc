package source

import "github.com/runwaydev/runway/internal/model"

// RowError records one CSV row the parser rejected and why. Malformed
// rows never become zero-amount transactions; they are surfaced here.
type RowError struct {
	Line   int
	Reason string
}

// ParseResult holds the output of parsing one bank-export CSV file.
type ParseResult struct {
	Transactions []model.Transaction
	RowErrors    []RowError
	// Err is set for file-level failures (unreadable file, no usable
	// header); row-level problems go to RowErrors instead.
	Err error
}
