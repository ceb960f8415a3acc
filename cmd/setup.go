package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to runway!")
	fmt.Println()

	// 1. Week start day
	fmt.Println("  1. Which day do your forecast weeks start on?")
	fmt.Println("     (1) Monday [default]")
	fmt.Println("     (2) Sunday")
	fmt.Print("     > ")
	choice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(choice) {
	case "2":
		cfg.General.WeekStart = "sunday"
	default:
		cfg.General.WeekStart = "monday"
	}
	fmt.Println()

	// 2. Starting balance
	fmt.Println("  2. Starting balance override")
	fmt.Println("     Leave blank to use the balance from your bank export.")
	fmt.Print("     > ")
	balance, _ := reader.ReadString('\n')
	balance = strings.TrimSpace(balance)
	if balance != "" {
		if _, err := decimal.NewFromString(balance); err != nil {
			return fmt.Errorf("starting balance %q: %w", balance, err)
		}
		cfg.General.StartingBalance = balance
	}
	fmt.Println()

	// 3. Receivables
	fmt.Println("  3. Invoicing service (expected collections overlay)")
	fmt.Println("     Leave blank to skip.")
	fmt.Print("     Base URL > ")
	baseURL, _ := reader.ReadString('\n')
	baseURL = strings.TrimSpace(baseURL)
	if baseURL != "" {
		cfg.Receivables.Enabled = true
		cfg.Receivables.BaseURL = baseURL

		existing := config.GetInvoicingKey(cfg)
		if existing != "" {
			fmt.Printf("     Current API key: %s\n", maskAPIKey(existing))
		}
		fmt.Print("     API key > ")
		apiKey, _ := reader.ReadString('\n')
		apiKey = strings.TrimSpace(apiKey)
		if apiKey != "" {
			cfg.Receivables.APIKey = apiKey
		}
	} else {
		cfg.Receivables.Enabled = false
	}
	fmt.Println()

	// 4. Theme
	fmt.Println("  4. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Catppuccin Mocha")
	fmt.Println("     (3) Tokyo Night")
	fmt.Println("     (4) Terminal (ANSI 16)")
	fmt.Print("     > ")
	themeChoice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(themeChoice) {
	case "2":
		cfg.Appearance.Theme = "catppuccin-mocha"
	case "3":
		cfg.Appearance.Theme = "tokyo-night"
	case "4":
		cfg.Appearance.Theme = "terminal"
	default:
		cfg.Appearance.Theme = "flexoki-dark"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `runway setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
