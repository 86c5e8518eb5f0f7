// Package document reúne las reglas puras del ciclo de vida de un documento:
// prefijos y formato de numeración, estado derivado de los pagos y transiciones de presupuestos.
package document

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// PaymentTolerance margen con el que un documento se considera pagado (absorbe ruido de redondeo).
var PaymentTolerance = decimal.New(1, -2)

var prefixes = map[string]string{
	entity.DocTypeQuote:         "DV",
	entity.DocTypeInvoice:       "FA",
	entity.DocTypeReceipt:       "RC",
	entity.DocTypeProforma:      "PF",
	entity.DocTypeCreditNote:    "CN",
	entity.DocTypeDeliveryNote:  "BL",
	entity.DocTypePurchaseOrder: "PO",
}

// ValidType indica si docType es uno de los tipos conocidos.
func ValidType(docType string) bool {
	_, ok := prefixes[docType]
	return ok
}

// Prefix devuelve el prefijo de numeración del tipo. ok=false si el tipo no existe.
func Prefix(docType string) (string, bool) {
	p, ok := prefixes[docType]
	return p, ok
}

// DayKey fecha UTC en formato YYMMDD; junto al prefijo identifica el contador diario.
func DayKey(at time.Time) string {
	return at.UTC().Format("060102")
}

// FormatNumber arma el número visible: {PREFIJO}{YYMMDD}-{seq:03d}.
func FormatNumber(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s%s-%03d", prefix, DayKey(at), seq)
}

// PaymentStatus estado derivado de lo cobrado frente al total.
// paid si paidTotal >= total - 0.01; partially_paid si hay algo cobrado; si no, unpaid.
func PaymentStatus(paidTotal, total decimal.Decimal) string {
	switch {
	case paidTotal.GreaterThanOrEqual(total.Sub(PaymentTolerance)):
		return entity.DocStatusPaid
	case paidTotal.IsPositive():
		return entity.DocStatusPartiallyPaid
	}
	return entity.DocStatusUnpaid
}

// InitialStatus estado de un documento recién creado. Los presupuestos nacen en draft.
func InitialStatus(docType string, paidTotal, total decimal.Decimal) string {
	if docType == entity.DocTypeQuote {
		return entity.DocStatusDraft
	}
	return PaymentStatus(paidTotal, total)
}

// CanTransition reglas de cambio manual de estado. Solo aplican a presupuestos:
// draft -> sent, draft|sent -> cancelled. accepted se alcanza únicamente por conversión.
func CanTransition(docType, from, to string) bool {
	if docType != entity.DocTypeQuote {
		return false
	}
	switch to {
	case entity.DocStatusSent:
		return from == entity.DocStatusDraft
	case entity.DocStatusCancelled:
		return from == entity.DocStatusDraft || from == entity.DocStatusSent
	}
	return false
}

// AcceptsPayments indica si se pueden añadir cobros al documento.
func AcceptsPayments(docType string) bool {
	return docType != entity.DocTypeQuote && docType != entity.DocTypeCreditNote
}

// Creditable indica si el tipo admite nota de crédito (devolución).
func Creditable(docType string) bool {
	return docType == entity.DocTypeInvoice || docType == entity.DocTypeReceipt
}

// MovesStockOnCreate tipo de movimiento de stock que genera la creación del documento ("" si ninguno).
func MovesStockOnCreate(docType string) string {
	switch docType {
	case entity.DocTypeInvoice, entity.DocTypeReceipt:
		return entity.MovementSale
	case entity.DocTypeDeliveryNote:
		return entity.MovementDelivery
	}
	return ""
}

// IsSale indica si el documento cuenta como venta en el turno.
func IsSale(docType string) bool {
	return docType == entity.DocTypeInvoice || docType == entity.DocTypeReceipt
}
