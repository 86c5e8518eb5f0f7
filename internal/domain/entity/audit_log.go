package entity

import (
	"encoding/json"
	"time"
)

// Acciones registradas en la auditoría.
const (
	AuditCreate          = "CREATE"
	AuditPayment         = "PAYMENT"
	AuditConvert         = "CONVERT"
	AuditDuplicate       = "DUPLICATE"
	AuditCreditNote      = "CREDIT_NOTE"
	AuditStatusChange    = "STATUS_CHANGE"
	AuditShiftOpen       = "SHIFT_OPEN"
	AuditShiftClose      = "SHIFT_CLOSE"
	AuditCashMovement    = "CASH_MOVEMENT"
	AuditStockAdjustment = "STOCK_ADJUSTMENT"
)

// Tipos de entidad auditada.
const (
	AuditEntityDocument = "document"
	AuditEntityShift    = "shift"
	AuditEntityProduct  = "product"
)

// AuditLog entrada append-only de la auditoría.
type AuditLog struct {
	ID           string
	Action       string
	EntityType   string
	EntityID     string
	EntityNumber string
	Description  string
	Before       json.RawMessage
	After        json.RawMessage
	Metadata     json.RawMessage
	UserID       string
	CreatedAt    time.Time
}
