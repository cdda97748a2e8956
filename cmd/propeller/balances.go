package main

import (
	"fmt"
	"math/big"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/propellerswap/propeller/pkg/app/bootstrap"
	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/balance"
	"github.com/propellerswap/propeller/pkg/swap"
)

type balanceLine struct {
	Key    string `json:"key"`
	Amount string `json:"amount,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newBalancesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balances <source-chain> <source-token> <target-chain> <target-token>",
		Short: "Print gas and token balances on both sides of a route",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := asset.ParseChainID(args[0])
			if err != nil {
				return err
			}
			target, err := asset.ParseChainID(args[2])
			if err != nil {
				return err
			}
			req := swap.Request{
				SourceChain: source,
				SourceToken: asset.Project(args[1]),
				TargetChain: target,
				TargetToken: asset.Project(args[3]),
			}

			cfg, logger, err := opts.load("balances")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			rt, err := bootstrap.New(cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			lines := make([]balanceLine, 0, 4)
			for _, key := range swap.BalanceKeys(req) {
				line := balanceLine{Key: key.String()}
				amount, err := rt.Balances.Get(cmd.Context(), key)
				if err != nil {
					line.Error = err.Error()
				} else {
					line.Amount = formatBalance(rt.Catalog, key, amount)
				}
				lines = append(lines, line)
			}

			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), lines)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, l := range lines {
				value := l.Amount
				if l.Error != "" {
					value = "error: " + l.Error
				}
				fmt.Fprintf(tw, "%s\t%s\n", l.Key, value)
			}
			return tw.Flush()
		},
	}
}

// formatBalance renders amount in human units when the catalog knows the
// decimals, falling back to atomic units.
func formatBalance(catalog *asset.Catalog, key balance.Key, amount *big.Int) string {
	switch key.Kind {
	case balance.KindGas:
		if info, err := catalog.Chain(key.Chain); err == nil {
			return asset.FormatAtomic(amount, info.GasDecimals)
		}
	case balance.KindToken:
		if a, err := catalog.Asset(key.Chain, key.Project); err == nil {
			return asset.FormatAtomic(amount, a.Decimals)
		}
	}
	return amount.String()
}
