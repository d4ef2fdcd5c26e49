// Command ledgerctl is the operator CLI for the household ledger: schema
// migrations, currency seeding, integrity checks and read-only inspection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the household ledger database",
		Long: `ledgerctl runs maintenance tasks against the ledger database.

Configuration comes from the same environment variables as the API server
(DATABASE_URL, REDIS_URL, ...), optionally read from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("no-color", false, "disable coloured output")

	cmd.AddCommand(
		migrateCmd(),
		seedCurrenciesCmd(),
		integrityCmd(),
		hierarchyCmd(),
		balanceCmd(),
	)
	return cmd
}
