package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de turno de caja.
const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

// Tipos de movimiento de efectivo.
const (
	CashIn  = "cash_in"
	CashOut = "cash_out"
)

// CashMovement entrada o salida manual de efectivo del cajón.
type CashMovement struct {
	ID        string
	Type      string
	Amount    decimal.Decimal
	Reason    string
	CreatedAt time.Time
}

// Shift sesión de caja de una terminal (RegisterNumber). Como máximo un turno abierto
// por caja; una vez cerrado es de solo lectura.
type Shift struct {
	ID             string
	RegisterNumber int
	CashierName    string
	Status         string
	OpeningCash    decimal.Decimal
	ClosingCash    decimal.Decimal // efectivo esperado congelado al cierre
	CountedCash    decimal.Decimal
	Discrepancy    decimal.Decimal // contado - esperado
	CashMovements  []CashMovement
	SalesCount     int
	SalesTotal     decimal.Decimal
	CashTotal      decimal.Decimal
	CardTotal      decimal.Decimal
	TransferTotal  decimal.Decimal
	RefundsTotal   decimal.Decimal
	VATCollected   decimal.Decimal
	Notes          string
	OpenedAt       time.Time
	ClosedAt       *time.Time
	UpdatedAt      time.Time
}

// IsOpen indica si el turno acepta ventas y movimientos.
func (s *Shift) IsOpen() bool {
	return s.Status == ShiftOpen
}

// AddToMethod suma amount al acumulador del medio de pago. Medios desconocidos se ignoran.
func (s *Shift) AddToMethod(method string, amount decimal.Decimal) {
	switch method {
	case PaymentCash:
		s.CashTotal = s.CashTotal.Add(amount)
	case PaymentCard:
		s.CardTotal = s.CardTotal.Add(amount)
	case PaymentBankTransfer:
		s.TransferTotal = s.TransferTotal.Add(amount)
	}
}

// Clone copia profunda del turno.
func (s *Shift) Clone() *Shift {
	if s == nil {
		return nil
	}
	c := *s
	c.CashMovements = append([]CashMovement(nil), s.CashMovements...)
	if s.ClosedAt != nil {
		t := *s.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}
