package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/homebooks/ledger/internal/ledger"
)

var errIntegrityFailed = errors.New("ledger integrity check failed")

func integrityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "integrity",
		Short: "Check that debits equal credits and every transaction is paired",
		Long: `Recomputes total debits and credits over all entries and lists transactions
that do not have exactly two entries. Exits non-zero when anything is wrong.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				report, err := a.ledger().CheckIntegrity(ctx)
				if err != nil {
					return err
				}
				printIntegrity(cmd.OutOrStdout(), report)
				if !report.OK() {
					return errIntegrityFailed
				}
				return nil
			})
		},
	}
}

func printIntegrity(w io.Writer, r *ledger.IntegrityReport) {
	green, red := color.New(color.FgGreen), color.New(color.FgRed)

	fmt.Fprintf(w, "checked at %s\n", r.CheckedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "entries   %d\n", r.Entries)
	fmt.Fprintf(w, "debits    %d\n", r.Debits)
	fmt.Fprintf(w, "credits   %d\n", r.Credits)

	if r.Balanced {
		green.Fprintln(w, "balanced  yes")
	} else {
		red.Fprintf(w, "balanced  no (difference %d)\n", r.Debits-r.Credits)
	}

	if len(r.UnpairedTransactions) == 0 {
		green.Fprintln(w, "unpaired  none")
		return
	}
	red.Fprintf(w, "unpaired  %d transaction(s): %v\n", len(r.UnpairedTransactions), r.UnpairedTransactions)
}
