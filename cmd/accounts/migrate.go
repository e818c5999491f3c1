package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-accounts/internal/config"
	"github.com/dropDatabas3/hellojohn-accounts/internal/http/server"
)

func newMigrateCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones embebidas del driver configurado",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			repo, err := server.OpenRepository(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			res, err := repo.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "driver=%s applied=%v skipped=%v duration=%s\n",
				cfg.Storage.Driver, res.Applied, res.Skipped, res.Duration)
			return nil
		},
	}
}
