package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/cli"
	"github.com/runwaydev/runway/internal/model"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show the 13-week cash flow forecast",
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	result, txns, _, err := buildForecast(s, cfg)
	if err != nil {
		return err
	}

	if len(txns) == 0 {
		fmt.Println("  No transactions yet. Import a bank export with `runway import <file.csv>`.")
		return nil
	}

	fmt.Println(cli.RenderTitle("13-Week Cash Forecast"))
	fmt.Println()

	rows := make([][]string, 0, len(result.Rows))
	var nets []float64
	negativeWeeks := 0
	for _, row := range result.Rows {
		net, _ := row.Net.Float64()
		nets = append(nets, net)
		if row.RunningBalance.IsNegative() {
			negativeWeeks++
		}
		rows = append(rows, []string{
			cli.FormatWeekLabel(row.WeekIndex),
			cli.FormatWeekRange(row.WeekStart, row.WeekEnd),
			cli.FormatMoney(row.TotalInflow()),
			cli.FormatMoney(row.TotalOutflow()),
			cli.FormatMoney(row.ARInflow),
			cli.FormatSignedMoney(row.Net),
			cli.FormatMoney(row.RunningBalance),
		})
	}

	resultRows := result.Rows
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Week", "Dates", "Inflow", "Outflow", "AR", "Net", "Balance"},
		Rows:    rows,
		CellStyle: func(row, col int, _ string) *lipgloss.Style {
			if row >= len(resultRows) {
				return nil
			}
			// Highlight the balance column when a week goes negative.
			if col == 6 && resultRows[row].RunningBalance.IsNegative() {
				s := lipgloss.NewStyle().Bold(true).Foreground(cli.ColorRed)
				return &s
			}
			if resultRows[row].WeekIndex == 0 && col == 0 {
				s := lipgloss.NewStyle().Bold(true).Foreground(cli.ColorAccent)
				return &s
			}
			return nil
		},
	}))

	fmt.Printf("\n  net by week  %s\n", cli.RenderSparkline(nets))

	last := result.Rows[len(result.Rows)-1]
	fmt.Printf("  ending balance: %s\n", cli.FormatMoney(last.RunningBalance))

	if negativeWeeks > 0 {
		lowest, week := lowestProjected(result.Rows)
		fmt.Println()
		fmt.Println(cli.Danger(fmt.Sprintf("  ⚠ balance goes negative in %d week(s), lowest %s in %s",
			negativeWeeks, cli.FormatMoney(lowest), cli.FormatWeekLabel(week))))
	}

	if len(result.AR) > 0 {
		fmt.Printf("\n  %s\n", cli.Muted(fmt.Sprintf("includes %d expected invoice collection(s) — see `runway receivables`", len(result.AR))))
	}

	return nil
}

func lowestProjected(rows []model.WeeklyCashflow) (low decimal.Decimal, week int) {
	for i, row := range rows {
		if i == 0 || row.RunningBalance.LessThan(low) {
			low = row.RunningBalance
			week = row.WeekIndex
		}
	}
	return low, week
}
