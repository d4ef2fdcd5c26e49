package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/homebooks/ledger/internal/platform/hierarchy"
)

func hierarchyCmd() *cobra.Command {
	var (
		asJSON bool
		out    string
	)
	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print or export the account hierarchy",
		Long: `Builds the account forest with balances and prints it as an indented
outline, or as JSON with --json. With --out the result replaces FILE
atomically instead of going to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				svc, err := a.hierarchy()
				if err != nil {
					return err
				}
				forest, err := svc.Build(ctx)
				if err != nil {
					return err
				}
				buf, err := encodeForest(forest, asJSON)
				if err != nil {
					return err
				}
				if out == "" {
					_, err = cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if err := atomic.WriteFile(out, buf); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d nodes to %s\n", forest.Len(), out)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of text")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to FILE instead of stdout")
	return cmd
}

type forestExport struct {
	Roots   []*hierarchy.TreeNode `json:"roots"`
	Orphans []hierarchy.Orphan    `json:"orphans,omitempty"`
}

func encodeForest(f *hierarchy.Forest, asJSON bool) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if !asJSON {
		if err := f.Render(&buf); err != nil {
			return nil, err
		}
		return &buf, nil
	}

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(forestExport{Roots: f.Tree(), Orphans: f.Orphans()}); err != nil {
		return nil, err
	}
	return &buf, nil
}
