package dto

import (
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"` // purchase, adjustment, transfer
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// StockMovementResponse movimiento del libro de stock.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	SKU           string    `json:"sku"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	StockBefore   int       `json:"stock_before"`
	StockAfter    int       `json:"stock_after"`
	ReferenceType string    `json:"reference_type,omitempty"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// StockAlertDTO producto en alerta de stock.
type StockAlertDTO struct {
	ProductID         string `json:"product_id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	StockQty          int    `json:"stock_qty"`
	MinStock          int    `json:"min_stock"`
	Level             string `json:"level"`               // low | out_of_stock
	SuggestedOrderQty int    `json:"suggested_order_qty"` // hasta 1.5 x min_stock
}

// StockAlertsResponse respuesta de GET /api/stock-alerts.
type StockAlertsResponse struct {
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	Items           []StockAlertDTO `json:"items"`
}

// NewStockMovementResponse mapea la entidad.
func NewStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		SKU:           m.SKU,
		Type:          m.Type,
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Reason:        m.Reason,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
