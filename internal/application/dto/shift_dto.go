package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// OpenShiftRequest body para POST /api/shifts/open.
type OpenShiftRequest struct {
	OpeningCash    decimal.Decimal `json:"opening_cash"`
	CashierName    string          `json:"cashier_name"`
	RegisterNumber int             `json:"register_number,omitempty"` // vacío: cabecera X-Register
}

// CashMovementRequest body para POST /api/shifts/current/cash-movements.
type CashMovementRequest struct {
	Type   string          `json:"type"` // cash_in | cash_out
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// CloseShiftRequest body para POST /api/shifts/current/close.
type CloseShiftRequest struct {
	CountedCash decimal.Decimal `json:"counted_cash"`
	Notes       string          `json:"notes,omitempty"`
}

// CashMovementResponse movimiento de efectivo.
type CashMovementResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ShiftResponse turno de caja en respuestas.
type ShiftResponse struct {
	ID             string                 `json:"id"`
	RegisterNumber int                    `json:"register_number"`
	CashierName    string                 `json:"cashier_name"`
	Status         string                 `json:"status"`
	OpeningCash    decimal.Decimal        `json:"opening_cash"`
	ClosingCash    decimal.Decimal        `json:"closing_cash"`
	CountedCash    decimal.Decimal        `json:"counted_cash"`
	Discrepancy    decimal.Decimal        `json:"discrepancy"`
	CashMovements  []CashMovementResponse `json:"cash_movements"`
	SalesCount     int                    `json:"sales_count"`
	SalesTotal     decimal.Decimal        `json:"sales_total"`
	CashTotal      decimal.Decimal        `json:"cash_total"`
	CardTotal      decimal.Decimal        `json:"card_total"`
	TransferTotal  decimal.Decimal        `json:"transfer_total"`
	RefundsTotal   decimal.Decimal        `json:"refunds_total"`
	VATCollected   decimal.Decimal        `json:"vat_collected"`
	Notes          string                 `json:"notes,omitempty"`
	OpenedAt       time.Time              `json:"opened_at"`
	ClosedAt       *time.Time             `json:"closed_at,omitempty"`
}

// NewShiftResponse mapea la entidad a la respuesta.
func NewShiftResponse(s *entity.Shift) ShiftResponse {
	moves := make([]CashMovementResponse, 0, len(s.CashMovements))
	for _, m := range s.CashMovements {
		moves = append(moves, CashMovementResponse{
			ID:        m.ID,
			Type:      m.Type,
			Amount:    m.Amount,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
		})
	}
	return ShiftResponse{
		ID:             s.ID,
		RegisterNumber: s.RegisterNumber,
		CashierName:    s.CashierName,
		Status:         s.Status,
		OpeningCash:    s.OpeningCash,
		ClosingCash:    s.ClosingCash,
		CountedCash:    s.CountedCash,
		Discrepancy:    s.Discrepancy,
		CashMovements:  moves,
		SalesCount:     s.SalesCount,
		SalesTotal:     s.SalesTotal,
		CashTotal:      s.CashTotal,
		CardTotal:      s.CardTotal,
		TransferTotal:  s.TransferTotal,
		RefundsTotal:   s.RefundsTotal,
		VATCollected:   s.VATCollected,
		Notes:          s.Notes,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
	}
}

// ZReportVATLine importes agrupados por tasa de IVA.
type ZReportVATLine struct {
	Rate  decimal.Decimal `json:"rate"`
	Net   decimal.Decimal `json:"net"`
	VAT   decimal.Decimal `json:"vat"`
	Gross decimal.Decimal `json:"gross"`
}

// ZReportDocTypeLine documentos del turno agrupados por tipo.
type ZReportDocTypeLine struct {
	DocType string          `json:"doc_type"`
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
}

// ZReportPaymentLine cobros del turno por medio de pago.
type ZReportPaymentLine struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// ZReportResponse informe Z de un turno (consulta de solo lectura).
type ZReportResponse struct {
	Shift         ShiftResponse        `json:"shift"`
	GeneratedAt   time.Time            `json:"generated_at"`
	DocumentCount int                  `json:"document_count"`
	ByVATRate     []ZReportVATLine     `json:"by_vat_rate"`
	ByDocType     []ZReportDocTypeLine `json:"by_doc_type"`
	Payments      []ZReportPaymentLine `json:"payments"`
	ExpectedCash  decimal.Decimal      `json:"expected_cash"`
}
