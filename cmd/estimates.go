package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/runwaydev/runway/internal/cli"
	"github.com/runwaydev/runway/internal/model"
)

var (
	flagEstAmount      string
	flagEstDirection   string
	flagEstCategory    string
	flagEstDescription string
	flagEstNotes       string
	flagEstWeek        int
	flagEstRecurrence  string
	flagEstDayOfMonth  int
)

var estimatesCmd = &cobra.Command{
	Use:   "estimates",
	Short: "Manage planned inflows and outflows",
	RunE:  runEstimatesList,
}

var estimatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List estimates",
	RunE:  runEstimatesList,
}

var estimatesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an estimate (interactive without flags)",
	RunE:  runEstimatesAdd,
}

var estimatesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an estimate",
	Args:  cobra.ExactArgs(1),
	RunE:  runEstimatesRm,
}

func init() {
	estimatesAddCmd.Flags().StringVar(&flagEstAmount, "amount", "", "Amount, e.g. 2000.00")
	estimatesAddCmd.Flags().StringVar(&flagEstDirection, "direction", "outflow", "inflow or outflow")
	estimatesAddCmd.Flags().StringVar(&flagEstCategory, "category", "", "Category label")
	estimatesAddCmd.Flags().StringVar(&flagEstDescription, "description", "", "Short description")
	estimatesAddCmd.Flags().StringVar(&flagEstNotes, "notes", "", "Free-form notes")
	estimatesAddCmd.Flags().IntVar(&flagEstWeek, "week", 0, "Week index for one-time estimates (-1 to 11)")
	estimatesAddCmd.Flags().StringVar(&flagEstRecurrence, "recurrence", "", "weekly, bi-weekly, or monthly")
	estimatesAddCmd.Flags().IntVar(&flagEstDayOfMonth, "day-of-month", 1, "Day of month for monthly recurrence")

	estimatesCmd.AddCommand(estimatesListCmd)
	estimatesCmd.AddCommand(estimatesAddCmd)
	estimatesCmd.AddCommand(estimatesRmCmd)
	rootCmd.AddCommand(estimatesCmd)
}

func runEstimatesList(_ *cobra.Command, _ []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	estimates, err := s.LoadEstimates()
	if err != nil {
		return err
	}
	if len(estimates) == 0 {
		fmt.Println("  No estimates. Add one with `runway estimates add`.")
		return nil
	}

	rows := make([][]string, 0, len(estimates))
	for _, e := range estimates {
		schedule := fmt.Sprintf("week %d", e.WeekIndex)
		if e.Recurring {
			schedule = string(e.Recurrence)
			if e.Recurrence == model.RecurMonthly {
				schedule = fmt.Sprintf("monthly (day %d)", e.DayOfMonth)
			}
		}
		rows = append(rows, []string{
			e.ID.String()[:8],
			cli.Truncate(e.Description, 30),
			cli.Truncate(e.Category, 20),
			string(e.Direction),
			cli.FormatMoney(e.Amount),
			schedule,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Estimates",
		Headers: []string{"ID", "Description", "Category", "Direction", "Amount", "Schedule"},
		Rows:    rows,
	}))
	return nil
}

func runEstimatesAdd(_ *cobra.Command, _ []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	e := model.Estimate{
		ID:          uuid.New(),
		Direction:   model.Direction(flagEstDirection),
		Category:    flagEstCategory,
		Description: flagEstDescription,
		Notes:       flagEstNotes,
		WeekIndex:   flagEstWeek,
		DayOfMonth:  flagEstDayOfMonth,
	}
	if flagEstRecurrence != "" {
		e.Recurring = true
		e.Recurrence = model.Recurrence(flagEstRecurrence)
	} else {
		e.Recurrence = model.RecurNone
	}

	if flagEstAmount != "" {
		e.Amount, err = decimal.NewFromString(flagEstAmount)
		if err != nil {
			return fmt.Errorf("amount %q: %w", flagEstAmount, err)
		}
	} else {
		// No flags: walk through an interactive form instead.
		if err := estimateForm(&e); err != nil {
			return err
		}
	}

	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.SaveEstimate(e); err != nil {
		return fmt.Errorf("saving estimate: %w", err)
	}

	fmt.Printf("  Added estimate %s (%s %s)\n", e.ID.String()[:8], e.Direction, cli.FormatMoney(e.Amount))
	return nil
}

// estimateForm collects estimate fields interactively.
func estimateForm(e *model.Estimate) error {
	var (
		amountStr = ""
		direction = string(model.Outflow)
		schedule  = "once"
		weekStr   = "0"
		dayStr    = "1"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Direction").
				Options(
					huh.NewOption("Outflow (payment)", string(model.Outflow)),
					huh.NewOption("Inflow (income)", string(model.Inflow)),
				).
				Value(&direction),
			huh.NewInput().
				Title("Amount").
				Placeholder("2000.00").
				Validate(func(s string) error {
					d, err := decimal.NewFromString(s)
					if err != nil {
						return fmt.Errorf("enter a decimal amount")
					}
					if d.IsNegative() {
						return fmt.Errorf("amount must not be negative")
					}
					return nil
				}).
				Value(&amountStr),
			huh.NewInput().
				Title("Description").
				Placeholder("biweekly payroll").
				Value(&e.Description),
			huh.NewInput().
				Title("Category").
				Placeholder("Payroll").
				Value(&e.Category),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Schedule").
				Options(
					huh.NewOption("One time", "once"),
					huh.NewOption("Weekly", string(model.RecurWeekly)),
					huh.NewOption("Bi-weekly", string(model.RecurBiWeekly)),
					huh.NewOption("Monthly", string(model.RecurMonthly)),
				).
				Value(&schedule),
			huh.NewInput().
				Title("Starting week (-1 to 11, 0 = this week)").
				Validate(validateInt(-1, 11)).
				Value(&weekStr),
			huh.NewInput().
				Title("Day of month (monthly only)").
				Validate(validateInt(1, 31)).
				Value(&dayStr),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	e.Direction = model.Direction(direction)
	e.Amount, _ = decimal.NewFromString(amountStr)
	e.WeekIndex, _ = strconv.Atoi(weekStr)
	e.DayOfMonth, _ = strconv.Atoi(dayStr)
	if schedule == "once" {
		e.Recurring = false
		e.Recurrence = model.RecurNone
	} else {
		e.Recurring = true
		e.Recurrence = model.Recurrence(schedule)
	}
	return nil
}

func validateInt(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func runEstimatesRm(_ *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	estimates, err := s.LoadEstimates()
	if err != nil {
		return err
	}

	prefix := args[0]
	var id uuid.UUID
	found := false
	for _, e := range estimates {
		full := e.ID.String()
		if full == prefix || len(prefix) >= 8 && len(prefix) < len(full) && full[:len(prefix)] == prefix {
			if found {
				return fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			id = e.ID
			found = true
		}
	}
	if !found {
		return fmt.Errorf("no estimate matches %q", prefix)
	}

	if err := s.DeleteEstimate(id); err != nil {
		return fmt.Errorf("deleting estimate: %w", err)
	}
	fmt.Printf("  Removed estimate %s\n", id.String()[:8])
	return nil
}
