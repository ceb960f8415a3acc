package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/cli"
	"github.com/runwaydev/runway/internal/model"
	"github.com/runwaydev/runway/internal/tui/theme"
)

// listWindow returns the slice bounds for a scrolling list so the cursor
// stays visible in visible rows.
func listWindow(cursor, total, visible int) (int, int) {
	if total <= visible {
		return 0, total
	}
	start := cursor - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > total {
		start = total - visible
	}
	return start, start + visible
}

func (a App) renderForecastTab(cw int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	currentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	negStyle := lipgloss.NewStyle().Foreground(t.Red).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-9s %-15s %12s %12s %10s %12s %14s",
		"Week", "Dates", "Inflow", "Outflow", "AR", "Net", "Balance")))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", min(cw-4, 90))))
	b.WriteString("\n")

	var nets []float64
	for _, row := range a.result.Rows {
		nets = append(nets, netAsFloat(row))

		inflow := row.ActualInflow.Add(row.EstimatedInflow)
		outflow := row.ActualOutflow.Add(row.EstimatedOutflow)

		line := fmt.Sprintf("  %-9s %-15s %12s %12s %10s %12s %14s",
			cli.FormatWeekLabel(row.WeekIndex),
			cli.FormatWeekRange(row.WeekStart, row.WeekEnd),
			cli.FormatMoney(inflow),
			cli.FormatMoney(outflow),
			cli.FormatMoney(row.ARInflow),
			cli.FormatSignedMoney(row.Net),
			cli.FormatMoney(row.RunningBalance),
		)

		style := rowStyle
		switch {
		case row.RunningBalance.IsNegative():
			style = negStyle
		case row.WeekIndex == 0:
			style = currentStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if len(a.result.Rows) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  net by week  "))
		b.WriteString(lipgloss.NewStyle().Foreground(t.Blue).Render(cli.RenderSparkline(nets)))
		b.WriteString("\n")

		last := a.result.Rows[len(a.result.Rows)-1]
		summary := fmt.Sprintf("  ending balance %s", cli.FormatMoney(last.RunningBalance))
		if lowest, week, ok := lowestBalance(a.result.Rows); ok && lowest.IsNegative() {
			summary += negStyle.Render(fmt.Sprintf("   ⚠ goes negative in %s (%s)",
				cli.FormatWeekLabel(week), cli.FormatMoney(lowest)))
		}
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render(summary))
		b.WriteString("\n")
	} else {
		b.WriteString(dimStyle.Render("\n  no data yet — run `runway import` to load a bank export\n"))
	}

	return b.String()
}

func (a App) renderTransactionsTab(cw, contentH int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover)
	inStyle := lipgloss.NewStyle().Foreground(t.Green)
	outStyle := lipgloss.NewStyle().Foreground(t.Orange)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-12s %-34s %-24s %12s",
		"Date", "Description", "Category", "Amount")))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", min(cw-4, 86))))
	b.WriteString("\n")

	if len(a.transactions) == 0 {
		b.WriteString(dimStyle.Render("\n  no transactions imported\n"))
		return b.String()
	}

	// Newest first for browsing.
	visible := contentH - 4
	if visible < 1 {
		visible = 1
	}
	total := len(a.transactions)
	start, end := listWindow(a.txnCursor, total, visible)

	for i := start; i < end; i++ {
		tx := a.transactions[total-1-i]

		amount := cli.FormatMoney(tx.Amount)
		amountStyle := inStyle
		if tx.Direction == model.Outflow {
			amount = "-" + amount
			amountStyle = outStyle
		}

		line := fmt.Sprintf("  %-12s %-34s %-24s ",
			tx.Date.Format("2006-01-02"),
			cli.Truncate(tx.Description, 34),
			cli.Truncate(tx.Category, 24),
		)

		if i == a.txnCursor {
			b.WriteString(selStyle.Render(line + fmt.Sprintf("%12s", amount)))
		} else {
			b.WriteString(rowStyle.Render(line))
			b.WriteString(amountStyle.Render(fmt.Sprintf("%12s", amount)))
		}
		b.WriteString("\n")
	}

	if total > visible {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, total)))
		b.WriteString("\n")
	}

	return b.String()
}

func (a App) renderEstimatesTab(cw, contentH int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-30s %-20s %10s %12s %-12s",
		"Description", "Category", "Direction", "Amount", "Schedule")))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", min(cw-4, 90))))
	b.WriteString("\n")

	if len(a.estimates) == 0 {
		b.WriteString(dimStyle.Render("\n  no estimates — add one with `runway estimates add`\n"))
		return b.String()
	}

	visible := contentH - 4
	if visible < 1 {
		visible = 1
	}
	start, end := listWindow(a.estCursor, len(a.estimates), visible)

	for i := start; i < end; i++ {
		e := a.estimates[i]

		schedule := fmt.Sprintf("week %d", e.WeekIndex)
		if e.Recurring {
			schedule = string(e.Recurrence)
			if e.Recurrence == model.RecurMonthly {
				schedule = fmt.Sprintf("monthly (%d)", e.DayOfMonth)
			}
		}

		line := fmt.Sprintf("  %-30s %-20s %10s %12s %-12s",
			cli.Truncate(e.Description, 30),
			cli.Truncate(e.Category, 20),
			string(e.Direction),
			cli.FormatMoney(e.Amount),
			schedule,
		)

		if i == a.estCursor {
			b.WriteString(selStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (a App) renderReceivablesTab(cw, contentH int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	confStyles := map[model.Confidence]lipgloss.Style{
		model.ConfidenceHigh:   lipgloss.NewStyle().Foreground(t.Green),
		model.ConfidenceMedium: lipgloss.NewStyle().Foreground(t.Yellow),
		model.ConfidenceLow:    lipgloss.NewStyle().Foreground(t.Orange),
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-10s %-24s %12s %12s %-12s %-11s %-10s",
		"Invoice", "Client", "Invoiced", "Expected", "Collection", "Status", "Confidence")))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", min(cw-4, 98))))
	b.WriteString("\n")

	if len(a.result.AR) == 0 {
		b.WriteString(dimStyle.Render("\n  no outstanding receivables (or the overlay is disabled)\n"))
		return b.String()
	}

	visible := contentH - 4
	if visible < 1 {
		visible = 1
	}
	start, end := listWindow(a.arCursor, len(a.result.AR), visible)

	for i := start; i < end; i++ {
		ar := a.result.AR[i]

		status := string(ar.Status)
		if ar.DaysOverdue > 0 {
			status = fmt.Sprintf("%s %dd", ar.Status, ar.DaysOverdue)
		}

		line := fmt.Sprintf("  %-10s %-24s %12s %12s %-12s %-11s ",
			cli.Truncate(ar.InvoiceID, 10),
			cli.Truncate(ar.Client, 24),
			cli.FormatMoney(ar.OriginalAmount),
			cli.FormatMoney(ar.Amount),
			ar.CollectionDate.Format("2006-01-02"),
			status,
		)

		if i == a.arCursor {
			b.WriteString(selStyle.Render(line + fmt.Sprintf("%-10s", ar.Confidence)))
		} else {
			b.WriteString(rowStyle.Render(line))
			b.WriteString(confStyles[ar.Confidence].Render(fmt.Sprintf("%-10s", ar.Confidence)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func netAsFloat(row model.WeeklyCashflow) float64 {
	f, _ := row.Net.Float64()
	return f
}

func lowestBalance(rows []model.WeeklyCashflow) (low decimal.Decimal, week int, ok bool) {
	for i, row := range rows {
		if i == 0 || row.RunningBalance.LessThan(low) {
			low = row.RunningBalance
			week = row.WeekIndex
		}
	}
	return low, week, len(rows) > 0
}
