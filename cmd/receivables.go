package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/cli"
	"github.com/runwaydev/runway/internal/config"
	"github.com/runwaydev/runway/internal/forecast"
)

var receivablesCmd = &cobra.Command{
	Use:     "receivables",
	Aliases: []string{"ar"},
	Short:   "Show expected invoice collections",
	RunE:    runReceivables,
}

var receivablesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the invoicing service connection",
	RunE:  runReceivablesCheck,
}

func init() {
	receivablesCmd.AddCommand(receivablesCheckCmd)
	rootCmd.AddCommand(receivablesCmd)
}

func runReceivables(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Receivables.Enabled {
		fmt.Println("  Receivables overlay is disabled. Enable it in config or run `runway setup`.")
		return nil
	}

	client := newInvoicingClient(cfg)
	if client == nil {
		return fmt.Errorf("receivables enabled but base_url or API key is missing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	invoices, err := client.ListOutstanding(ctx)
	if err != nil {
		return fmt.Errorf("fetching invoices: %w", err)
	}
	if len(invoices) == 0 {
		fmt.Println("  No outstanding invoices.")
		return nil
	}

	weekStart, err := cfg.General.Weekday()
	if err != nil {
		return err
	}
	now := time.Now()
	cal := forecast.NewCalendar(now, weekStart)
	estimates := forecast.AdjustReceivables(invoices, assumptionsFromConfig(cfg), cal, now)

	rows := make([][]string, 0, len(estimates))
	for _, ar := range estimates {
		status := string(ar.Status)
		if ar.DaysOverdue > 0 {
			status = fmt.Sprintf("%s (%dd)", ar.Status, ar.DaysOverdue)
		}
		rows = append(rows, []string{
			ar.InvoiceID,
			cli.Truncate(ar.Client, 24),
			cli.FormatMoney(ar.OriginalAmount),
			cli.FormatMoney(ar.Amount),
			cli.FormatDate(ar.CollectionDate),
			cli.FormatWeekLabel(ar.WeekIndex),
			status,
			string(ar.Confidence),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Expected Collections",
		Headers: []string{"Invoice", "Client", "Invoiced", "Expected", "Collection", "Week", "Status", "Confidence"},
		Rows:    rows,
	}))

	fmt.Printf("\n  assumptions: %s on-time, %s overdue, +%d day(s) average delay\n",
		cli.FormatPercent(cfg.Receivables.OnTimeRate),
		cli.FormatPercent(cfg.Receivables.OverdueRate),
		cfg.Receivables.AvgDelayDays,
	)
	return nil
}

func runReceivablesCheck(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := newInvoicingClient(cfg)
	if client == nil {
		return fmt.Errorf("receivables are not configured; run `runway setup`")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("invoicing service check failed: %w", err)
	}

	fmt.Printf("  Invoicing service at %s: ok\n", cfg.Receivables.BaseURL)
	return nil
}
