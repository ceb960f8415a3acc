package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/cli"
	"github.com/runwaydev/runway/internal/forecast"
	"github.com/runwaydev/runway/internal/source"
)

var flagImportDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a bank CSV export",
	Long: "Parse a bank CSV export, categorize each transaction, skip rows already\n" +
		"imported, and flag likely duplicates for review.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Parse and report without writing anything")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	parsed := source.ParseFile(args[0])
	if parsed.Err != nil {
		return parsed.Err
	}

	for _, rowErr := range parsed.RowErrors {
		fmt.Printf("  %s\n", cli.Warn(fmt.Sprintf("line %d skipped: %s", rowErr.Line, rowErr.Reason)))
	}

	if len(parsed.Transactions) == 0 {
		fmt.Println("  No importable rows found.")
		return nil
	}

	categorized := forecast.Categorize(parsed.Transactions, forecast.DefaultRules)

	known, err := s.KnownHashes()
	if err != nil {
		return fmt.Errorf("reading known transactions: %w", err)
	}
	partition := forecast.PartitionKnown(categorized, known)

	if flagImportDryRun {
		fmt.Printf("  Dry run: %d new, %d already imported, %d malformed\n",
			len(partition.New), len(partition.Duplicates), len(parsed.RowErrors))
		return nil
	}

	inserted, err := s.UpsertTransactions(partition.New)
	if err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}

	fmt.Printf("  Imported %d transaction(s), skipped %d exact duplicate(s)\n",
		inserted, len(partition.Duplicates))

	// Fuzzy matches are advisory only: same vendor, close date, same
	// amount, but a different hash. The user decides what to do.
	dedupeCfg, err := dedupeFromConfig(cfg)
	if err != nil {
		return err
	}
	all, err := s.LoadTransactions()
	if err != nil {
		return fmt.Errorf("reloading transactions: %w", err)
	}
	groups := forecast.SimilarGroups(all, dedupeCfg)
	if len(groups) > 0 {
		fmt.Println()
		fmt.Println(cli.Warn(fmt.Sprintf("  ⚠ %d possible duplicate group(s) found — review with `runway dupes`", len(groups))))
	}

	return nil
}
