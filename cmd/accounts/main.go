// Command accounts sirve el endpoint de vinculación de cuentas y expone
// herramientas de operación (migraciones, depuración de firmas OAuth1).
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "accounts",
		Short:         "Servicio de vinculación de cuentas OAuth1/OAuth2",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if f.envFile == "" {
				return nil
			}
			// .env es opcional salvo que se pida explícitamente
			if err := godotenv.Load(f.envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("cargar %s: %w", f.envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", os.Getenv("ACCOUNTS_CONFIG"), "Archivo YAML de configuración (env ACCOUNTS_CONFIG)")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "Archivo .env a cargar")

	root.AddCommand(newServeCmd(f), newMigrateCmd(f), newSignatureCmd())
	return root
}
