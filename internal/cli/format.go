// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats a decimal amount as dollars with comma separators.
// e.g., 12345.5 -> "$12,345.50", -300 -> "-$300.00"
func FormatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err == nil {
		whole = FormatNumber(n)
	}

	out := "$" + whole + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatSignedMoney is FormatMoney with an explicit leading sign, for
// deltas and net figures where "+" carries meaning.
func FormatSignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// FormatWeekLabel renders a forecast week index for display.
// e.g., -1 -> "W-1", 0 -> "W0 (now)", 3 -> "W3"
func FormatWeekLabel(index int) string {
	if index == 0 {
		return "W0 (now)"
	}
	return fmt.Sprintf("W%d", index)
}

// FormatWeekRange renders a week window as a compact date range.
// e.g., "Aug 24 - Aug 30" or "Dec 29 - Jan 4" across a year boundary.
func FormatWeekRange(start, end time.Time) string {
	return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2"))
}

// FormatDate renders a date for display, e.g. "Aug 30, 2026".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// Truncate shortens a string to max runes, appending an ellipsis.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
