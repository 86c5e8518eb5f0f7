// Package seed carga el catálogo de demostración y el operador administrador. Es idempotente:
// lo que ya existe no se vuelve a crear.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
	"github.com/jhoicas/pos-api/pkg/vat"
)

// Umbral de alerta de stock bajo de los productos sembrados.
const defaultMinStock = 10

// Admin credenciales del operador inicial. Sin Email no se crea.
type Admin struct {
	Email    string
	Password string
	Name     string
}

// Report cuántos registros se crearon en cada tabla.
type Report struct {
	Categories int
	Products   int
	Customers  int
	Admin      bool
}

// Seeder siembra a través de los repositorios (memoria o PostgreSQL).
type Seeder struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	customers  repository.CustomerRepository
	auth       *auth.AuthUseCase
	log        *logger.Logger
	now        func() time.Time
}

// NewSeeder construye el seeder.
func NewSeeder(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	authUC *auth.AuthUseCase,
	log *logger.Logger,
) *Seeder {
	return &Seeder{
		categories: categories,
		products:   products,
		customers:  customers,
		auth:       authUC,
		log:        log.Named("seed"),
		now:        time.Now,
	}
}

// Run siembra categorías, productos, clientes y el administrador.
func (s *Seeder) Run(ctx context.Context, admin Admin) (Report, error) {
	var rep Report
	now := s.now().UTC()

	// ── 1. Categorías ──
	existing, err := s.categories.List(ctx)
	if err != nil {
		return rep, fmt.Errorf("seed: listar categorías: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.ID] = true
	}
	for _, c := range categories {
		if have[c.id] {
			continue
		}
		if err := s.categories.Create(ctx, &entity.Category{ID: c.id, NameFR: c.fr, NameNL: c.nl}); err != nil {
			return rep, fmt.Errorf("seed: categoría %s: %w", c.id, err)
		}
		rep.Categories++
	}

	// ── 2. Productos ──
	for _, p := range products {
		found, err := s.products.GetBySKU(ctx, p.sku)
		if err != nil {
			return rep, fmt.Errorf("seed: buscar %s: %w", p.sku, err)
		}
		if found != nil {
			continue
		}
		err = s.products.Create(ctx, &entity.Product{
			ID:         p.id,
			SKU:        p.sku,
			Name:       p.name,
			CategoryID: p.category,
			Unit:       p.unit,
			Price:      decimal.RequireFromString(p.price),
			VATRate:    decimal.NewFromInt(21),
			StockQty:   p.stock,
			MinStock:   defaultMinStock,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return rep, fmt.Errorf("seed: producto %s: %w", p.sku, err)
		}
		rep.Products++
	}

	// ── 3. Clientes ──
	for _, c := range customers {
		found, err := s.customers.GetByID(ctx, c.id)
		if err != nil {
			return rep, fmt.Errorf("seed: buscar cliente %s: %w", c.id, err)
		}
		if found != nil {
			continue
		}
		cust := &entity.Customer{
			ID:          c.id,
			Type:        c.kind,
			Name:        c.name,
			VATNumber:   c.vat,
			Email:       c.email,
			Phone:       c.phone,
			Country:     "BE",
			CreditLimit: decimal.RequireFromString(c.creditLimit),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if c.vat != "" {
			cust.PeppolScheme = "0208"
			cust.PeppolID = "0208:" + vat.EnterpriseNumber(c.vat)
		}
		if err := s.customers.Create(ctx, cust); err != nil {
			return rep, fmt.Errorf("seed: cliente %s: %w", c.id, err)
		}
		rep.Customers++
	}

	// ── 4. Administrador ──
	if admin.Email != "" {
		_, err := s.auth.RegisterUser(ctx, dto.CreateUserRequest{
			Email:    admin.Email,
			Password: admin.Password,
			Name:     admin.Name,
			Role:     entity.RoleAdmin,
		})
		switch {
		case err == nil:
			rep.Admin = true
		case errors.Is(err, domain.ErrDuplicate):
		default:
			return rep, fmt.Errorf("seed: administrador: %w", err)
		}
	}

	s.log.Info().
		Int("categories", rep.Categories).
		Int("products", rep.Products).
		Int("customers", rep.Customers).
		Bool("admin", rep.Admin).
		Msg("catálogo sembrado")
	return rep, nil
}
