package main

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "posctl",
		Short: "Administración del backend del punto de venta",
		Long: `posctl aplica las migraciones de PostgreSQL y carga el catálogo de demostración.

Lee la misma configuración que la API (variables de entorno, .env, config/config.env).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd())
	return root
}

// setup carga configuración y logger comunes a todos los subcomandos.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, log, nil
}
