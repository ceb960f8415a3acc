package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/config"
	"github.com/runwaydev/runway/internal/tui"
	"github.com/runwaydev/runway/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	weekStart, err := cfg.General.Weekday()
	if err != nil {
		return err
	}
	override, err := balanceOverride(cfg)
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Params{
		DBPath:          dbPath(cfg),
		WeekStart:       weekStart,
		Assumptions:     assumptionsFromConfig(cfg),
		Invoicing:       newInvoicingClient(cfg),
		BalanceOverride: override,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
