package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento comercial.
const (
	DocTypeQuote         = "quote"
	DocTypeInvoice       = "invoice"
	DocTypeReceipt       = "receipt"
	DocTypeProforma      = "proforma"
	DocTypeCreditNote    = "credit_note"
	DocTypeDeliveryNote  = "delivery_note"
	DocTypePurchaseOrder = "purchase_order"
)

// Estados de documento (cadenas exactas esperadas por los clientes).
const (
	DocStatusDraft         = "draft"
	DocStatusSent          = "sent"
	DocStatusAccepted      = "accepted"
	DocStatusUnpaid        = "unpaid"
	DocStatusPartiallyPaid = "partially_paid"
	DocStatusPaid          = "paid"
	DocStatusCancelled     = "cancelled"
	DocStatusCredited      = "credited"
)

// Tipos de descuento (por línea o global).
const (
	DiscountNone    = "none"
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Medios de pago.
const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentBankTransfer = "bank_transfer"
)

// CustomerSnapshot copia de los datos del cliente al momento de emitir el documento.
// No se vuelve a leer del cliente: el documento conserva lo que se facturó.
type CustomerSnapshot struct {
	ID         string
	Name       string
	VATNumber  string
	Street     string
	City       string
	PostalCode string
	Country    string
	PeppolID   string
}

// DocumentItem línea de un documento. LineSubtotal, LineVAT y LineTotal los calcula
// siempre el motor de precios.
type DocumentItem struct {
	ProductID     string
	SKU           string
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	DiscountType  string
	DiscountValue decimal.Decimal
	VATRate       decimal.Decimal // porcentaje: 21 = 21%
	LineSubtotal  decimal.Decimal // precisión completa
	LineVAT       decimal.Decimal // precisión completa
	LineTotal     decimal.Decimal // round(LineSubtotal + LineVAT, 2)
}

// Payment cobro (o reembolso, si Amount es negativo) asociado a un documento.
type Payment struct {
	ID        string
	Method    string
	Amount    decimal.Decimal
	Reference string
	ShiftID   string // vacío si se registró sin turno abierto
	CreatedAt time.Time
}

// Document entidad raíz: presupuesto, factura, ticket, proforma, nota de crédito,
// albarán u orden de compra. Nunca se elimina; una anulación es una nota de crédito.
type Document struct {
	ID                     string
	Number                 string
	DocType                string
	Status                 string
	Customer               CustomerSnapshot
	Items                  []DocumentItem
	Payments               []Payment
	Subtotal               decimal.Decimal
	VATTotal               decimal.Decimal
	Total                  decimal.Decimal
	PaidTotal              decimal.Decimal
	GlobalDiscountType     string
	GlobalDiscountValue    decimal.Decimal
	Notes                  string
	SourceDocumentID       string
	RelatedDocuments       []string
	ReferenceInvoiceID     string // solo notas de crédito
	ReferenceInvoiceNumber string // solo notas de crédito
	ShiftID                string
	StockMovementIDs       []string
	CreatedBy              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// HasCustomer indica si el documento tiene cliente identificado.
func (d *Document) HasCustomer() bool {
	return d.Customer.ID != ""
}

// Clone devuelve una copia profunda (slices incluidos) para snapshots de auditoría
// y para los almacenes en memoria.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Items = append([]DocumentItem(nil), d.Items...)
	c.Payments = append([]Payment(nil), d.Payments...)
	c.RelatedDocuments = append([]string(nil), d.RelatedDocuments...)
	c.StockMovementIDs = append([]string(nil), d.StockMovementIDs...)
	return &c
}
