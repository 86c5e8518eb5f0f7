// Package catalog consulta y alta de productos, categorías y clientes. El stock no se toca
// aquí: solo cambia a través del libro de stock.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/vat"
)

// Tasas de IVA belgas admitidas (%).
var validVATRates = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(6),
	decimal.NewFromInt(12),
	decimal.NewFromInt(21),
}

// CatalogUseCase casos de uso del catálogo.
type CatalogUseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	customers  repository.CustomerRepository
	now        func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(products repository.ProductRepository, categories repository.CategoryRepository, customers repository.CustomerRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products, categories: categories, customers: customers, now: time.Now}
}

// CreateProduct da de alta un producto con stock cero. ErrDuplicate si el SKU existe.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if in.SKU == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: sku y name son obligatorios", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidAmount)
	}
	if !validVATRate(in.VATRate) {
		return nil, fmt.Errorf("%w: tasa de IVA %s", domain.ErrInvalidInput, in.VATRate)
	}
	if in.MinStock < 0 {
		return nil, fmt.Errorf("%w: min_stock negativo", domain.ErrInvalidInput)
	}
	unit := in.Unit
	switch unit {
	case "":
		unit = entity.UnitPiece
	case entity.UnitPiece, entity.UnitMeter, entity.UnitM2, entity.UnitBox:
	default:
		return nil, fmt.Errorf("%w: unidad %q", domain.ErrInvalidInput, unit)
	}
	existing, err := uc.products.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, in.SKU)
	}
	now := uc.now().UTC()
	p := &entity.Product{
		ID:         uuid.New().String(),
		SKU:        in.SKU,
		Name:       strings.TrimSpace(in.Name),
		CategoryID: in.CategoryID,
		Unit:       unit,
		Price:      in.Price,
		VATRate:    in.VATRate,
		MinStock:   in.MinStock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, err
	}
	out := dto.NewProductResponse(p)
	return &out, nil
}

// GetProduct devuelve el producto o domain.ErrProductNotFound.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	out := dto.NewProductResponse(p)
	return &out, nil
}

// ListProducts productos ordenados por SKU.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.products.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.NewProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListCategories familias de productos.
func (uc *CatalogUseCase) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryResponse{ID: c.ID, NameFR: c.NameFR, NameNL: c.NameNL})
	}
	return out, nil
}

// CreateCustomer da de alta un cliente. Con número de IVA belga y sin endpoint Peppol se
// deriva el identificador 0208 del número de empresa.
func (uc *CatalogUseCase) CreateCustomer(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name es obligatorio", domain.ErrInvalidInput)
	}
	kind := in.Type
	switch kind {
	case "":
		kind = entity.CustomerIndividual
	case entity.CustomerIndividual, entity.CustomerCompany:
	default:
		return nil, fmt.Errorf("%w: tipo de cliente %q", domain.ErrInvalidInput, kind)
	}
	if in.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: límite de crédito negativo", domain.ErrInvalidAmount)
	}
	country := strings.ToUpper(strings.TrimSpace(in.Country))
	if country == "" {
		country = "BE"
	}
	vatNumber := vat.Normalize(in.VATNumber)
	if vat.IsBelgian(vatNumber) {
		if err := vat.ValidateBelgian(vatNumber); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	now := uc.now().UTC()
	c := &entity.Customer{
		ID:          uuid.New().String(),
		Type:        kind,
		Name:        strings.TrimSpace(in.Name),
		VATNumber:   vatNumber,
		Email:       in.Email,
		Phone:       in.Phone,
		Street:      in.Street,
		City:        in.City,
		PostalCode:  in.PostalCode,
		Country:     country,
		PeppolID:    in.PeppolID,
		CreditLimit: in.CreditLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.PeppolID == "" && vat.IsBelgian(vatNumber) {
		c.PeppolID = "0208:" + vat.EnterpriseNumber(vatNumber)
	}
	if scheme, _, ok := strings.Cut(c.PeppolID, ":"); ok {
		c.PeppolScheme = scheme
	}
	if err := uc.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	out := dto.NewCustomerResponse(c)
	return &out, nil
}

// GetCustomer devuelve el cliente o domain.ErrNotFound.
func (uc *CatalogUseCase) GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	out := dto.NewCustomerResponse(c)
	return &out, nil
}

// ListCustomers busca por nombre, IVA o email.
func (uc *CatalogUseCase) ListCustomers(ctx context.Context, search string, page dto.PageRequest) ([]dto.CustomerResponse, error) {
	page.DefaultPage()
	list, err := uc.customers.List(ctx, strings.TrimSpace(search), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.NewCustomerResponse(c))
	}
	return out, nil
}

func validVATRate(rate decimal.Decimal) bool {
	for _, r := range validVATRates {
		if rate.Equal(r) {
			return true
		}
	}
	return false
}
