// Package cmd implements the runway CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Week start:       %s\n", cfg.General.WeekStart)
	fmt.Printf("    Database:         %s\n", dbPath(cfg))
	if cfg.General.StartingBalance != "" {
		fmt.Printf("    Starting balance: %s (override)\n", cfg.General.StartingBalance)
	} else {
		fmt.Println("    Starting balance: latest bank-reported balance")
	}
	fmt.Println()

	fmt.Println("  [Dedupe]")
	fmt.Printf("    Date window:          %dh\n", cfg.Dedupe.MaxHourDelta)
	fmt.Printf("    Similarity threshold: %.2f\n", cfg.Dedupe.SimilarityThreshold)
	fmt.Printf("    Amount tolerance:     %s\n", cfg.Dedupe.AmountTolerance)
	fmt.Println()

	fmt.Println("  [Receivables]")
	fmt.Printf("    Enabled: %v\n", cfg.Receivables.Enabled)
	if cfg.Receivables.BaseURL != "" {
		fmt.Printf("    Service: %s\n", cfg.Receivables.BaseURL)
	}
	apiKey := config.GetInvoicingKey(cfg)
	if apiKey != "" {
		fmt.Printf("    API key: %s\n", maskAPIKey(apiKey))
	} else {
		fmt.Println("    API key: not configured")
	}
	fmt.Printf("    On-time rate:  %.2f\n", cfg.Receivables.OnTimeRate)
	fmt.Printf("    Overdue rate:  %.2f\n", cfg.Receivables.OverdueRate)
	fmt.Printf("    Average delay: %d day(s)\n", cfg.Receivables.AvgDelayDays)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `runway setup` to reconfigure.")
	return nil
}
