package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/config"
	"github.com/runwaydev/runway/internal/forecast"
	"github.com/runwaydev/runway/internal/invoicing"
	"github.com/runwaydev/runway/internal/model"
	"github.com/runwaydev/runway/internal/store"
)

var (
	flagDBPath string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "runway",
	Short: "13-week cash flow forecast CLI",
	Long:  "Forecast your small business cash position: import bank exports, track estimates, and project 13 weeks ahead.",
	RunE:  runForecast,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDBPath, "db", "d", "", "Database path (default: data dir from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// dataDir returns the directory holding the database and daemon files.
func dataDir(cfg config.Config) string {
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "runway")
}

func dbPath(cfg config.Config) string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return filepath.Join(dataDir(cfg), "runway.db")
}

// openStore loads config and opens the database, the shared entry path
// for every command that touches stored data.
func openStore() (*store.Store, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	s, err := store.Open(dbPath(cfg))
	if err != nil {
		return nil, cfg, err
	}
	return s, cfg, nil
}

// newInvoicingClient builds a client from config, or nil when the
// receivables overlay is disabled or not configured.
func newInvoicingClient(cfg config.Config) *invoicing.Client {
	if !cfg.Receivables.Enabled {
		return nil
	}
	return invoicing.NewClient(cfg.Receivables.BaseURL, config.GetInvoicingKey(cfg))
}

func assumptionsFromConfig(cfg config.Config) forecast.CollectionAssumptions {
	return forecast.CollectionAssumptions{
		Enabled:      cfg.Receivables.Enabled,
		OnTimeRate:   cfg.Receivables.OnTimeRate,
		OverdueRate:  cfg.Receivables.OverdueRate,
		AvgDelayDays: cfg.Receivables.AvgDelayDays,
	}
}

func dedupeFromConfig(cfg config.Config) (forecast.DedupeConfig, error) {
	tolerance, err := decimal.NewFromString(cfg.Dedupe.AmountTolerance)
	if err != nil {
		return forecast.DedupeConfig{}, fmt.Errorf("config: amount_tolerance %q: %w", cfg.Dedupe.AmountTolerance, err)
	}
	return forecast.DedupeConfig{
		MaxHourDelta:        cfg.Dedupe.MaxHourDelta,
		SimilarityThreshold: cfg.Dedupe.SimilarityThreshold,
		AmountTolerance:     tolerance,
	}, nil
}

// balanceOverride returns the configured starting balance, or nil to use
// the latest bank-reported balance.
func balanceOverride(cfg config.Config) (*decimal.Decimal, error) {
	if cfg.General.StartingBalance == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(cfg.General.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("config: starting_balance %q: %w", cfg.General.StartingBalance, err)
	}
	return &d, nil
}

// buildForecast loads everything from the store, fetches outstanding
// invoices when configured, and runs the full forecast.
func buildForecast(s *store.Store, cfg config.Config) (forecast.Result, []model.Transaction, []model.Estimate, error) {
	txns, err := s.LoadTransactions()
	if err != nil {
		return forecast.Result{}, nil, nil, fmt.Errorf("loading transactions: %w", err)
	}
	estimates, err := s.LoadEstimates()
	if err != nil {
		return forecast.Result{}, nil, nil, fmt.Errorf("loading estimates: %w", err)
	}

	balance := decimal.Zero
	if override, err := balanceOverride(cfg); err != nil {
		return forecast.Result{}, nil, nil, err
	} else if override != nil {
		balance = *override
	} else if reported, ok, err := s.LatestReportedBalance(); err == nil && ok {
		balance = reported
	}

	var invoices []model.ReceivableInvoice
	if client := newInvoicingClient(cfg); client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		invoices, err = client.ListOutstanding(ctx)
		cancel()
		if err != nil {
			// Degrade to a forecast without the AR overlay.
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  warning: invoice fetch failed, forecasting without receivables: %v\n", err)
			}
			invoices = nil
		}
	}

	weekStart, err := cfg.General.Weekday()
	if err != nil {
		return forecast.Result{}, nil, nil, err
	}

	result := forecast.Build(forecast.Inputs{
		Transactions:    txns,
		Estimates:       estimates,
		Invoices:        invoices,
		Assumptions:     assumptionsFromConfig(cfg),
		StartingBalance: balance,
		Now:             time.Now(),
		WeekStart:       weekStart,
	})
	return result, txns, estimates, nil
}
