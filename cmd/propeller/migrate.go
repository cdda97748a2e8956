package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"github.com/propellerswap/propeller/pkg/migrations/swapdb"
	"github.com/propellerswap/propeller/pkg/pgutil"
	mghelper "github.com/propellerswap/propeller/pkg/pgutil/migrations"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <" + strings.Join(mghelper.Commands, "|") + ">",
		Short:     "Manage the swap journal database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: mghelper.Commands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load("migrate")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if !cfg.Database.Enabled() {
				return fmt.Errorf("database.host is not configured")
			}
			db, err := pgutil.ConnectDB(&cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return mghelper.Run(cmd.Context(), migrate.NewMigrator(db, swapdb.Migrations), args[0], logger)
		},
	}
}
