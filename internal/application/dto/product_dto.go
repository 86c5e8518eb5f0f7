package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto. El stock inicial entra con un
// movimiento de compra, no aquí.
type CreateProductRequest struct {
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id,omitempty"`
	Unit       string          `json:"unit,omitempty"`
	Price      decimal.Decimal `json:"price"`
	VATRate    decimal.Decimal `json:"vat_rate"`
	MinStock   int             `json:"min_stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id,omitempty"`
	Unit       string          `json:"unit"`
	Price      decimal.Decimal `json:"price"`
	VATRate    decimal.Decimal `json:"vat_rate"`
	StockQty   int             `json:"stock_qty"`
	MinStock   int             `json:"min_stock"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewProductResponse mapea la entidad.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Unit:       p.Unit,
		Price:      p.Price,
		VATRate:    p.VATRate,
		StockQty:   p.StockQty,
		MinStock:   p.MinStock,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CategoryResponse familia de productos.
type CategoryResponse struct {
	ID     string `json:"id"`
	NameFR string `json:"name_fr"`
	NameNL string `json:"name_nl"`
}

// CreateCustomerRequest entrada para crear un cliente.
type CreateCustomerRequest struct {
	Type        string          `json:"type"` // individual | company
	Name        string          `json:"name"`
	VATNumber   string          `json:"vat_number,omitempty"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Street      string          `json:"street,omitempty"`
	City        string          `json:"city,omitempty"`
	PostalCode  string          `json:"postal_code,omitempty"`
	Country     string          `json:"country,omitempty"`
	PeppolID    string          `json:"peppol_id,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	VATNumber   string          `json:"vat_number,omitempty"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Street      string          `json:"street,omitempty"`
	City        string          `json:"city,omitempty"`
	PostalCode  string          `json:"postal_code,omitempty"`
	Country     string          `json:"country"`
	PeppolID    string          `json:"peppol_id,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewCustomerResponse mapea la entidad.
func NewCustomerResponse(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Type:        c.Type,
		Name:        c.Name,
		VATNumber:   c.VATNumber,
		Email:       c.Email,
		Phone:       c.Phone,
		Street:      c.Street,
		City:        c.City,
		PostalCode:  c.PostalCode,
		Country:     c.Country,
		PeppolID:    c.PeppolID,
		CreditLimit: c.CreditLimit,
		CreatedAt:   c.CreatedAt,
	}
}
