package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/documents"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/seed"
	"github.com/jhoicas/pos-api/internal/application/shift"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	infrapdf "github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-api/internal/infrastructure/peppol"
	"github.com/jhoicas/pos-api/internal/infrastructure/storage"
	"github.com/jhoicas/pos-api/internal/infrastructure/ticket"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer backend.Close()
	repos := backend.Repos

	trail := audit.NewTrail(repos.Audit)
	shifts := shift.NewRegister(backend.Tx, repos.Shifts, repos.Documents, trail, log)
	ledger := inventory.NewStockLedger(backend.Tx, repos.Products, repos.Movements, trail, log)
	engine := documents.NewEngine(backend.Tx, repos.Documents, ledger, shifts, trail, log)

	issuer := entity.Company{
		Name:       cfg.Company.Name,
		VATNumber:  cfg.Company.VATNumber,
		Street:     cfg.Company.Street,
		City:       cfg.Company.City,
		PostalCode: cfg.Company.PostalCode,
		Country:    cfg.Company.Country,
		PeppolID:   cfg.Company.PeppolID,
		Phone:      cfg.Company.Phone,
		Email:      cfg.Company.Email,
	}
	output := documents.NewOutputUseCase(repos.Documents, infrapdf.NewMarotoPDFGenerator(), peppol.NewUBLBuilder(), ticket.NewPrinter(), issuer)

	authUC := auth.NewAuthUseCase(backend.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	catalogUC := catalog.NewCatalogUseCase(repos.Products, backend.Categories, repos.Customers)

	// En memoria no hay `posctl seed`: se siembra al arrancar.
	if cfg.Store.Driver == config.StoreMemory {
		rep, err := seed.NewSeeder(backend.Categories, repos.Products, repos.Customers, authUC, log).Run(ctx, seed.Admin{
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
			Name:     cfg.Seed.AdminName,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("sembrar almacén en memoria")
		}
		log.Info().Int("products", rep.Products).Bool("admin", rep.Admin).Msg("catálogo de demostración cargado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + httpRouter.RegisterHeader,
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "POS API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		Catalog:         catalogUC,
		Documents:       engine,
		Output:          output,
		Shifts:          shifts,
		Stock:           ledger,
		Trail:           trail,
		JWTSecret:       cfg.JWT.Secret,
		DefaultRegister: cfg.POS.DefaultRegister,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
