package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/wormhole"
)

func newVAACommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vaa <chain> <sequence>",
		Short: "Fetch the signed bridge message for a token bridge sequence",
		Long: `Fetch the guardian-signed message (VAA) emitted by a configured EVM chain's
token bridge and print it as hex. The guardian RPC is read from
wormhole.rpc_url or PROPELLER_WORMHOLE_RPC_URL.

Example:
  propeller vaa bsc 4821`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chainID, err := asset.ParseChainID(args[0])
			if err != nil {
				return err
			}
			sequence, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sequence %q: %w", args[1], err)
			}

			cfg, logger, err := opts.load("vaa")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			_, chainCfg, ok := cfg.EVM.EVMChainByWormholeID(uint16(chainID))
			if !ok {
				return fmt.Errorf("%w: no evm chain configured for %s", asset.ErrUnknownChain, chainID)
			}
			if chainCfg.TokenBridge == "" {
				return fmt.Errorf("evm chain %s has no token_bridge configured", chainID)
			}
			emitter, err := wormhole.EmitterAddressEVM(chainCfg.TokenBridge)
			if err != nil {
				return err
			}

			client, err := wormhole.NewClient(&cfg.Wormhole, logger)
			if err != nil {
				return err
			}
			logger.Info("Getting VAA",
				zap.String("chain", chainID.String()),
				zap.String("emitter", emitter),
				zap.Uint64("sequence", sequence))

			vaa, err := client.SignedVAA(cmd.Context(), uint16(chainID), emitter, sequence)
			if err != nil {
				return err
			}

			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"chain":    uint16(chainID),
					"emitter":  emitter,
					"sequence": sequence,
					"vaa":      hex.EncodeToString(vaa),
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(vaa))
			return err
		},
	}
}
