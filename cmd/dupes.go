package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/cli"
	"github.com/runwaydev/runway/internal/forecast"
	"github.com/runwaydev/runway/internal/model"
)

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Review possible duplicate transactions",
	RunE:  runDupes,
}

var dupesRmCmd = &cobra.Command{
	Use:   "rm <hash>",
	Short: "Delete one transaction by hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runDupesRm,
}

func init() {
	dupesCmd.AddCommand(dupesRmCmd)
	rootCmd.AddCommand(dupesCmd)
}

func runDupes(_ *cobra.Command, _ []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	dedupeCfg, err := dedupeFromConfig(cfg)
	if err != nil {
		return err
	}

	txns, err := s.LoadTransactions()
	if err != nil {
		return err
	}

	groups := forecast.SimilarGroups(txns, dedupeCfg)
	if len(groups) == 0 {
		fmt.Println("  No possible duplicates found.")
		return nil
	}

	fmt.Printf("  %d possible duplicate group(s):\n\n", len(groups))
	for i, group := range groups {
		fmt.Printf("  Group %d\n", i+1)
		for _, tx := range group {
			sign := ""
			if tx.Direction == model.Outflow {
				sign = "-"
			}
			fmt.Printf("    %s  %s  %s%s  %s\n",
				cli.Muted(tx.Hash[:12]),
				tx.Date.Format("2006-01-02"),
				sign, cli.FormatMoney(tx.Amount),
				cli.Truncate(tx.Description, 40),
			)
		}
		fmt.Println()
	}

	fmt.Println(cli.Muted("  Remove a duplicate with `runway dupes rm <hash>` (a 12-char prefix works if unique)."))
	return nil
}

func runDupesRm(_ *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	hash, err := resolveHash(s, args[0])
	if err != nil {
		return err
	}

	if err := s.DeleteTransaction(hash); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	fmt.Printf("  Deleted %s\n", hash[:12])
	return nil
}

// resolveHash expands a hash prefix to the full stored hash, failing on
// ambiguity.
func resolveHash(s interface{ KnownHashes() (map[string]struct{}, error) }, prefix string) (string, error) {
	known, err := s.KnownHashes()
	if err != nil {
		return "", err
	}
	if _, ok := known[prefix]; ok {
		return prefix, nil
	}

	var match string
	for h := range known {
		if len(prefix) >= 6 && len(h) > len(prefix) && h[:len(prefix)] == prefix {
			if match != "" {
				return "", fmt.Errorf("hash prefix %q is ambiguous", prefix)
			}
			match = h
		}
	}
	if match == "" {
		return "", fmt.Errorf("no transaction matches %q", prefix)
	}
	return match, nil
}
