package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/pkg/money"
)

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance ACCOUNT_ID",
		Short: "Print an account's current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid account id %q", args[0])
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				acc, err := a.accounts().Get(ctx, id)
				if err != nil {
					return err
				}
				balance, err := a.ledger().CurrentBalance(ctx, id)
				if err != nil {
					return err
				}
				printBalance(cmd.OutOrStdout(), acc, balance)
				return nil
			})
		},
	}
}

func printBalance(w io.Writer, acc *account.Account, balance int64) {
	fmt.Fprintf(w, "#%d %s (%s)\n", acc.ID, acc.Name, acc.Type)
	fmt.Fprintf(w, "  %s %s  [%d minor units]\n",
		money.FromMinorUnits(balance, money.Fraction(acc.Currency)), acc.Currency, balance)
}
