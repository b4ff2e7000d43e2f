package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hogar/internal/core"
)

var (
	flagPeriodMonth    string
	flagPeriodSeedZero bool
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Open the budget period for a month",
	RunE:  runPeriod,
}

func init() {
	rootCmd.AddCommand(periodCmd)
	periodCmd.Flags().StringVarP(&flagPeriodMonth, "month", "m", "", "Month as YYYY-MM (default current month)")
	periodCmd.Flags().BoolVar(&flagPeriodSeedZero, "seed-zero", false, "Create an explicit zero line for every expense category")
}

func runPeriod(cmd *cobra.Command, _ []string) error {
	hh, err := household()
	if err != nil {
		return err
	}
	month := core.MonthOf(time.Now())
	if flagPeriodMonth != "" {
		month, err = core.ParseMonthKey(flagPeriodMonth)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	app, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(app)

	p, created, err := app.Repo.EnsurePeriod(ctx, hh.HouseholdID, month, flagPeriodSeedZero)
	if err != nil {
		return err
	}
	state := "already open"
	if created {
		state = "opened"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%s)\n", p.Month, state, p.Status)
	return nil
}
