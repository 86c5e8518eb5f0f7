package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de venta.
const (
	UnitPiece = "piece"
	UnitMeter = "meter"
	UnitM2    = "m2"
	UnitBox   = "box"
)

// Product representa un artículo del catálogo. StockQty solo se modifica a través del
// libro de stock (StockMovement); puede quedar negativo.
type Product struct {
	ID         string
	SKU        string
	Name       string
	CategoryID string
	Unit       string
	Price      decimal.Decimal // precio de venta sin IVA
	VATRate    decimal.Decimal // porcentaje: 21 = 21%
	StockQty   int
	MinStock   int // umbral de alerta de stock bajo
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsOutOfStock stock agotado (exactamente cero).
func (p *Product) IsOutOfStock() bool {
	return p.StockQty == 0
}

// IsLowStock stock en o por debajo del mínimo (incluye valores negativos).
func (p *Product) IsLowStock() bool {
	return p.StockQty <= p.MinStock
}
