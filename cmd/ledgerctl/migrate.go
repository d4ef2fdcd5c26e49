package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/homebooks/ledger/internal/infra/postgres"
	"github.com/homebooks/ledger/migrations"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				applied, err := postgres.Migrate(ctx, a.db.Pool, migrations.FS)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(applied) == 0 {
					fmt.Fprintln(out, "schema is up to date")
					return nil
				}
				for _, name := range applied {
					fmt.Fprintf(out, "applied %s\n", name)
				}
				return nil
			})
		},
	}
}
