package inventory

import (
	"context"
	"math"

	"github.com/jhoicas/pos-api/internal/application/dto"
)

// Niveles de alerta.
const (
	AlertLow        = "low"
	AlertOutOfStock = "out_of_stock"
)

// StockAlerts productos en o por debajo del stock mínimo, los más urgentes primero.
// Sugiere reponer hasta 1.5 veces el mínimo.
func (l *StockLedger) StockAlerts(ctx context.Context) (*dto.StockAlertsResponse, error) {
	products, err := l.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.StockAlertsResponse{Items: make([]dto.StockAlertDTO, 0, len(products))}
	for _, p := range products {
		level := AlertLow
		if p.IsOutOfStock() {
			level = AlertOutOfStock
			resp.OutOfStockCount++
		} else {
			resp.LowStockCount++
		}
		ideal := int(math.Ceil(float64(p.MinStock) * 1.5))
		suggested := ideal - p.StockQty
		if suggested < 0 {
			suggested = 0
		}
		resp.Items = append(resp.Items, dto.StockAlertDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			Name:              p.Name,
			StockQty:          p.StockQty,
			MinStock:          p.MinStock,
			Level:             level,
			SuggestedOrderQty: suggested,
		})
	}
	return resp, nil
}
