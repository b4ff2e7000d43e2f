package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hogar/internal/core"
	"hogar/internal/services"
)

var (
	flagView   string
	flagMonth  string
	flagLength int
	flagJSON   bool
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Print the budget report for a month or a trailing range",
	RunE:  runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
	budgetCmd.Flags().StringVar(&flagView, "view", string(core.WindowMonth), "month or range")
	budgetCmd.Flags().StringVarP(&flagMonth, "month", "m", "", "Anchor month as YYYY-MM (default current month)")
	budgetCmd.Flags().IntVarP(&flagLength, "length", "n", 3, "Range length in months")
	budgetCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the report as JSON")
}

func runBudget(cmd *cobra.Command, _ []string) error {
	hh, err := household()
	if err != nil {
		return err
	}
	month := flagMonth
	if month == "" {
		month = core.MonthOf(time.Now()).String()
	}
	window, err := core.ParseWindow(flagView, month, flagLength)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(app)

	report, err := app.Budgets.Report(ctx, hh, window)
	if err != nil {
		return err
	}
	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return renderReport(cmd.OutOrStdout(), report)
}

func renderReport(out io.Writer, r services.BudgetReport) error {
	fmt.Fprintf(out, "\n  %s  %s\n\n", r.HouseholdID, r.Window)

	w := newTable(out)
	fmt.Fprintln(w, "CATEGORY\tEXPECTED\tSPENT\tREMAINING\t%\tSTATUS")
	for _, id := range r.Order {
		c := r.PerCategory[id]
		name := c.Name
		if c.Overridden {
			name += " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", name,
			c.Expected.StringFixed(2), c.Spent.StringFixed(2), c.Remaining.StringFixed(2),
			c.Percent.StringFixed(1), c.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := r.Summary
	w = newTable(out)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Income\t%s\n", s.Income.StringFixed(2))
	fmt.Fprintf(w, "  Expense\t%s\n", s.Expense.StringFixed(2))
	fmt.Fprintf(w, "  Balance\t%s\n", s.Balance.StringFixed(2))
	fmt.Fprintf(w, "  Budget\t%s\n", s.BudgetTotal.StringFixed(2))
	fmt.Fprintf(w, "  Rollover\t%s\n", s.Rollover.StringFixed(2))
	fmt.Fprintf(w, "  Available\t%s\t(%s%% used, %s)\n",
		s.EffectiveAvailable.StringFixed(2), s.Percent.StringFixed(1), s.Status)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(out)
		for _, warn := range r.Warnings {
			fmt.Fprintf(out, "  ! %s: %s\n", warn.Kind, warn.Message)
		}
	}
	fmt.Fprintln(out)
	return nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}
