package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hogar/internal/admin"
)

var seedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Create a household and its categories from a TOML seed file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the household's categories",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	seed, err := admin.LoadSeed(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(app)

	res, err := admin.Apply(ctx, app.Repo, seed)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, c := range res.Created {
		fmt.Fprintf(out, "  created  %-24s %s\n", c.Name, c.ID)
	}
	for _, name := range res.Skipped {
		fmt.Fprintf(out, "  exists   %s\n", name)
	}
	fmt.Fprintf(out, "\n  %s: %d created, %d skipped, defaults %s\n",
		seed.Household.ID, len(res.Created), len(res.Skipped), res.DefaultTotal.StringFixed(2))
	return nil
}

func runCategories(cmd *cobra.Command, _ []string) error {
	hh, err := household()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	app, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(app)

	cats, err := app.Repo.ListCategories(ctx, hh.HouseholdID)
	if err != nil {
		return err
	}
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tNAME\tKIND\tDEFAULT\tEVERY")
	for _, c := range cats {
		def := "-"
		if c.DefaultAmount.Valid {
			def = c.DefaultAmount.Decimal.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dm\n", c.ID, c.Name, c.Kind, def, c.PeriodMonths)
	}
	return w.Flush()
}
