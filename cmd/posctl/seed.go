package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/seed"
	"github.com/jhoicas/pos-api/internal/infrastructure/storage"
	"github.com/jhoicas/pos-api/pkg/config"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga categorías, productos, clientes y el administrador",
		Long: `Inserta el catálogo de demostración de la ferretería (4 categorías, 50 productos,
10 clientes) y un operador admin. Lo que ya existe no se toca, así que se puede
ejecutar varias veces.`,
		Example: `  posctl seed --admin-email admin@brico.be --admin-password 'cambiar-esto'`,
		RunE:    runSeed,
	}
	cmd.Flags().String("admin-email", "", "Email del administrador (SEED_ADMIN_EMAIL)")
	cmd.Flags().String("admin-password", "", "Contraseña del administrador, mínimo 8 (SEED_ADMIN_PASSWORD)")
	cmd.Flags().String("admin-name", "", "Nombre visible del administrador (SEED_ADMIN_NAME)")
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cfg.Store.Driver != config.StorePostgres {
		return fmt.Errorf("seed requiere STORE_DRIVER=%s; en memoria la API siembra al arrancar", config.StorePostgres)
	}
	admin := seed.Admin{
		Email:    flagOr(cmd, "admin-email", cfg.Seed.AdminEmail),
		Password: flagOr(cmd, "admin-password", cfg.Seed.AdminPassword),
		Name:     flagOr(cmd, "admin-name", cfg.Seed.AdminName),
	}

	ctx := cmd.Context()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	authUC := auth.NewAuthUseCase(backend.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	rep, err := seed.NewSeeder(backend.Categories, backend.Repos.Products, backend.Repos.Customers, authUC, log).Run(ctx, admin)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "categorías: %d, productos: %d, clientes: %d, admin creado: %t\n",
		rep.Categories, rep.Products, rep.Customers, rep.Admin)
	return nil
}

func flagOr(cmd *cobra.Command, name, def string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return def
}
