package main

import (
	"github.com/spf13/cobra"

	"github.com/propellerswap/propeller/pkg/app"
	"github.com/propellerswap/propeller/pkg/app/api"
	"github.com/propellerswap/propeller/pkg/config"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the swap HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			var runner app.Runner = api.NewServer(cfg)
			return runner.Run()
		},
	}
}
