package main

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/homebooks/ledger/internal/platform/currency"
	"github.com/homebooks/ledger/pkg/config"
)

func seedCurrenciesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-currencies",
		Short: "Upsert currency master data from a YAML file",
		Long: `Reads the currency seed file (see config/currencies.yaml) and inserts or
updates every currency in it. The whole file is validated before anything
is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := config.LoadCurrencies(file)
			if err != nil {
				return err
			}
			currencies := toCurrencies(seeds.Currencies)

			return withApp(cmd, func(ctx context.Context, a *app) error {
				bar := pb.New(len(currencies)).SetWriter(cmd.ErrOrStderr()).Start()
				written, err := a.currencies(ctx).Seed(ctx, currencies, func(*currency.Currency) {
					bar.Increment()
				})
				bar.Finish()
				if err != nil {
					return fmt.Errorf("seeded %d of %d currencies: %w", written, len(currencies), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d currencies from %s\n", written, file)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "config/currencies.yaml", "currency seed file")
	return cmd
}

func toCurrencies(seeds []config.CurrencySeed) []*currency.Currency {
	out := make([]*currency.Currency, len(seeds))
	for i, s := range seeds {
		out[i] = &currency.Currency{
			Code:        s.Code,
			NumericCode: s.NumericCode,
			MinorUnit:   s.MinorUnit,
			Name:        s.Name,
		}
	}
	return out
}
