package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/app/bootstrap"
	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/swap"
)

type swapOptions struct {
	*rootOptions
	SourceChain  string
	SourceToken  string
	TargetChain  string
	TargetToken  string
	Amount       string
	MaxFee       string
	GasKickstart bool
}

func newSwapCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &swapOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Run one swap and wait for the target chain to confirm it",
		Long: `Run one cross-chain swap. The command returns once the target chain
reports the swap's memo, the target timeout expires, or it is interrupted.

Example:
  propeller swap --source-chain bsc --source-token usdc \
    --target-chain solana --target-token usdt --amount 25 --max-fee 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}
			return runSwap(cmd, opts, req)
		},
	}

	cmd.Flags().StringVar(&opts.SourceChain, "source-chain", "", "source chain name or id (required)")
	cmd.Flags().StringVar(&opts.SourceToken, "source-token", "", "source token project (required)")
	cmd.Flags().StringVar(&opts.TargetChain, "target-chain", "", "target chain name or id (required)")
	cmd.Flags().StringVar(&opts.TargetToken, "target-token", "", "target token project (required)")
	cmd.Flags().StringVar(&opts.Amount, "amount", "", "input amount in human units (required)")
	cmd.Flags().StringVar(&opts.MaxFee, "max-fee", "0", "maximum propeller fee in human units")
	cmd.Flags().BoolVar(&opts.GasKickstart, "gas-kickstart", false, "ask the relayer to deliver target gas")
	for _, f := range []string{"source-chain", "source-token", "target-chain", "target-token", "amount"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func (o *swapOptions) request() (swap.Request, error) {
	source, err := asset.ParseChainID(o.SourceChain)
	if err != nil {
		return swap.Request{}, err
	}
	target, err := asset.ParseChainID(o.TargetChain)
	if err != nil {
		return swap.Request{}, err
	}
	amount, err := decimal.NewFromString(o.Amount)
	if err != nil {
		return swap.Request{}, fmt.Errorf("invalid amount %q: %w", o.Amount, err)
	}
	maxFee, err := decimal.NewFromString(o.MaxFee)
	if err != nil {
		return swap.Request{}, fmt.Errorf("invalid max fee %q: %w", o.MaxFee, err)
	}

	req := swap.Request{
		SourceChain:  source,
		SourceToken:  asset.Project(o.SourceToken),
		TargetChain:  target,
		TargetToken:  asset.Project(o.TargetToken),
		InputAmount:  amount,
		MaxFee:       maxFee,
		GasKickstart: o.GasKickstart,
	}
	return req, swap.ValidateRequest(req)
}

func runSwap(cmd *cobra.Command, opts *swapOptions, req swap.Request) error {
	cfg, logger, err := opts.load("swap")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rt, err := bootstrap.New(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onRecord := swap.OnTxRecord(func(s swap.Snapshot, r swap.TxRecord) {
		logger.Info("Transaction detected",
			zap.String("swap_id", s.ID),
			zap.String("chain", r.Chain.String()),
			zap.String("tx", r.TxID))
	})

	snap, swapErr := rt.Orchestrator.Execute(ctx, req, onRecord)
	if snap.ID != "" {
		if err := writeSnapshot(cmd.OutOrStdout(), opts.Output, snap); err != nil {
			return err
		}
	}
	return swapErr
}
