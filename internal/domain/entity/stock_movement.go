package entity

import "time"

// Tipos de movimiento del libro de stock.
const (
	MovementSale       = "sale"
	MovementReturn     = "return"
	MovementAdjustment = "adjustment"
	MovementPurchase   = "purchase"
	MovementTransfer   = "transfer"
	MovementDelivery   = "delivery"
)

// StockMovement registro inmutable de un cambio de stock.
// StockAfter = StockBefore + delta con signo (ver MovementSign).
type StockMovement struct {
	ID            string
	ProductID     string
	SKU           string // se conserva aunque el producto se elimine después
	Type          string
	Quantity      int
	StockBefore   int
	StockAfter    int
	ReferenceType string // ej. "document"
	ReferenceID   string
	Reason        string
	CreatedBy     string
	CreatedAt     time.Time
}

// MovementSign devuelve +1 para entradas, -1 para salidas y 0 si el tipo no existe.
func MovementSign(movementType string) int {
	switch movementType {
	case MovementReturn, MovementPurchase, MovementAdjustment:
		return 1
	case MovementSale, MovementTransfer, MovementDelivery:
		return -1
	}
	return 0
}
