package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/documents"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/shift"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	Catalog         *catalog.CatalogUseCase
	Documents       *documents.Engine
	Output          *documents.OutputUseCase
	Shifts          *shift.Register
	Stock           *inventory.StockLedger
	Trail           *audit.Trail
	JWTSecret       string
	DefaultRegister int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	reg := registerResolver{shifts: deps.Shifts, defaultRegister: deps.DefaultRegister}
	if reg.defaultRegister < 1 {
		reg.defaultRegister = 1
	}
	managers := RequireRole(entity.RoleManager, entity.RoleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/register", RequireRole(entity.RoleAdmin), authHandler.Register)

	// Documents
	docs := protected.Group("/documents")
	documentHandler := NewDocumentHandler(deps.Documents, deps.Output, reg)
	docs.Post("/", documentHandler.Create)
	docs.Get("/", documentHandler.List)
	docs.Get("/:id", documentHandler.Get)
	docs.Get("/:id/audit", documentHandler.Audit)
	docs.Post("/:id/pay", documentHandler.Pay)
	docs.Post("/:id/convert", documentHandler.Convert)
	docs.Post("/:id/duplicate", documentHandler.Duplicate)
	docs.Post("/:id/return", documentHandler.Return)
	docs.Patch("/:id/status", documentHandler.ChangeStatus)
	docs.Get("/:id/pdf", documentHandler.PDF)
	docs.Get("/:id/ubl", documentHandler.UBL)
	docs.Get("/:id/ticket", documentHandler.Ticket)

	// Shifts; las rutas fijas van antes que /:id
	shifts := protected.Group("/shifts")
	shiftHandler := NewShiftHandler(deps.Shifts, reg)
	shifts.Post("/open", shiftHandler.Open)
	shifts.Get("/current", shiftHandler.Current)
	shifts.Post("/current/cash-movements", shiftHandler.CashMovement)
	shifts.Post("/current/close", managers, shiftHandler.Close)
	shifts.Get("/", shiftHandler.List)
	shifts.Get("/:id", shiftHandler.Get)
	shifts.Get("/:id/z-report", shiftHandler.ZReport)

	// Inventory y auditoría
	inventoryHandler := NewInventoryHandler(deps.Stock, deps.Trail)
	protected.Post("/inventory/movements", managers, inventoryHandler.RegisterMovement)
	protected.Get("/inventory/movements", inventoryHandler.ListMovements)
	protected.Get("/stock-alerts", inventoryHandler.StockAlerts)
	protected.Get("/audit-logs", inventoryHandler.AuditLogs)

	// Catálogo
	productHandler := NewProductHandler(deps.Catalog)
	products := protected.Group("/products")
	products.Post("/", managers, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	protected.Get("/categories", productHandler.Categories)

	customerHandler := NewCustomerHandler(deps.Catalog)
	customers := protected.Group("/customers")
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)
}
