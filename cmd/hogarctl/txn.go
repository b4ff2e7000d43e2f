package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hogar/internal/core"
)

var (
	flagTxnAmount   string
	flagTxnKind     string
	flagTxnCategory string
	flagTxnScope    string
	flagTxnDate     string
	flagTxnDesc     string
)

var txnCmd = &cobra.Command{
	Use:   "txn",
	Short: "Record a transaction",
	RunE:  runTxn,
}

func init() {
	rootCmd.AddCommand(txnCmd)
	txnCmd.Flags().StringVarP(&flagTxnAmount, "amount", "a", "", "Amount, e.g. 12.50 or 12,50")
	txnCmd.Flags().StringVarP(&flagTxnKind, "kind", "k", string(core.KindExpense), "income or expense")
	txnCmd.Flags().StringVarP(&flagTxnCategory, "category", "c", "", "Category name or ID (empty for uncategorised)")
	txnCmd.Flags().StringVar(&flagTxnScope, "scope", string(core.ScopeShared), "shared or member")
	txnCmd.Flags().StringVar(&flagTxnDate, "date", "", "Date as YYYY-MM-DD (default today)")
	txnCmd.Flags().StringVarP(&flagTxnDesc, "desc", "d", "", "Description")
	_ = txnCmd.MarkFlagRequired("amount")
}

func runTxn(cmd *cobra.Command, _ []string) error {
	hh, err := household()
	if err != nil {
		return err
	}
	amount, err := core.ParsePositiveAmount(flagTxnAmount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", flagTxnAmount, err)
	}
	date := time.Now().UTC()
	if flagTxnDate != "" {
		date, err = time.Parse("2006-01-02", flagTxnDate)
		if err != nil {
			return fmt.Errorf("date %q: %w", flagTxnDate, err)
		}
	}

	ctx := cmd.Context()
	app, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(app)

	t := core.Transaction{
		HouseholdID: hh.HouseholdID,
		Amount:      amount,
		Kind:        core.Kind(strings.ToLower(flagTxnKind)),
		Scope:       core.Scope(strings.ToLower(flagTxnScope)),
		Date:        date,
		Description: strings.TrimSpace(flagTxnDesc),
	}
	if flagTxnCategory != "" {
		cats, err := app.Repo.ListCategories(ctx, hh.HouseholdID)
		if err != nil {
			return err
		}
		id, ok := resolveCategory(cats, flagTxnCategory)
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrCategoryNotFound, flagTxnCategory)
		}
		t.CategoryID = &id
	}

	id, err := app.Repo.AddTransaction(ctx, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  recorded #%d  %s %s on %s\n", id, t.Kind, amount.String(), date.Format("2006-01-02"))
	return nil
}

// resolveCategory matches ref against IDs first, then names case-insensitively.
func resolveCategory(cats []core.Category, ref string) (string, bool) {
	for _, c := range cats {
		if c.ID == ref {
			return c.ID, true
		}
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, true
		}
	}
	return "", false
}
