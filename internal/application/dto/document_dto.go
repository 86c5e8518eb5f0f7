package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// DocumentItemRequest línea en el body de creación.
type DocumentItemRequest struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Quantity      int             `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountType  string          `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	VATRate       decimal.Decimal `json:"vat_rate"`
}

// PaymentRequest cobro en el body de creación o de POST /api/documents/:id/pay.
type PaymentRequest struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// CreateDocumentRequest body para POST /api/documents.
type CreateDocumentRequest struct {
	DocType             string                `json:"doc_type"`
	CustomerID          string                `json:"customer_id,omitempty"`
	Items               []DocumentItemRequest `json:"items"`
	Payments            []PaymentRequest      `json:"payments"`
	GlobalDiscountType  string                `json:"global_discount_type,omitempty"`
	GlobalDiscountValue decimal.Decimal       `json:"global_discount_value"`
	Notes               string                `json:"notes,omitempty"`
	SourceDocumentID    string                `json:"source_document_id,omitempty"`
}

// ReturnLineRequest línea devuelta.
type ReturnLineRequest struct {
	ItemIndex int `json:"item_index"`
	Quantity  int `json:"qty"`
}

// CreateReturnRequest body para POST /api/documents/:id/return. Sin items: devolución total.
type CreateReturnRequest struct {
	Items        []ReturnLineRequest `json:"items"`
	RefundMethod string              `json:"refund_method,omitempty"`
	Notes        string              `json:"notes,omitempty"`
}

// ChangeStatusRequest body para PATCH /api/documents/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// CustomerSnapshotResponse datos del cliente congelados en el documento.
type CustomerSnapshotResponse struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	VATNumber  string `json:"vat_number,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	PeppolID   string `json:"peppol_id,omitempty"`
}

// DocumentItemResponse línea con importes calculados.
type DocumentItemResponse struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Quantity      int             `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	LineSubtotal  decimal.Decimal `json:"line_subtotal"`
	LineVAT       decimal.Decimal `json:"line_vat"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// PaymentResponse cobro registrado.
type PaymentResponse struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	ShiftID   string          `json:"shift_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DocumentResponse documento en respuestas y en los snapshots de auditoría.
type DocumentResponse struct {
	ID                     string                   `json:"id"`
	Number                 string                   `json:"number"`
	DocType                string                   `json:"doc_type"`
	Status                 string                   `json:"status"`
	Customer               CustomerSnapshotResponse `json:"customer"`
	Items                  []DocumentItemResponse   `json:"items"`
	Payments               []PaymentResponse        `json:"payments"`
	Subtotal               decimal.Decimal          `json:"subtotal"`
	VATTotal               decimal.Decimal          `json:"vat_total"`
	Total                  decimal.Decimal          `json:"total"`
	PaidTotal              decimal.Decimal          `json:"paid_total"`
	GlobalDiscountType     string                   `json:"global_discount_type"`
	GlobalDiscountValue    decimal.Decimal          `json:"global_discount_value"`
	Notes                  string                   `json:"notes,omitempty"`
	SourceDocumentID       string                   `json:"source_document_id,omitempty"`
	RelatedDocuments       []string                 `json:"related_documents"`
	ReferenceInvoiceID     string                   `json:"reference_invoice_id,omitempty"`
	ReferenceInvoiceNumber string                   `json:"reference_invoice_number,omitempty"`
	ShiftID                string                   `json:"shift_id,omitempty"`
	StockMovementIDs       []string                 `json:"stock_movement_ids"`
	CreatedBy              string                   `json:"created_by,omitempty"`
	CreatedAt              time.Time                `json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`
}

// NewDocumentResponse mapea la entidad a la respuesta.
func NewDocumentResponse(d *entity.Document) DocumentResponse {
	items := make([]DocumentItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, DocumentItemResponse{
			ProductID:     it.ProductID,
			SKU:           it.SKU,
			Name:          it.Name,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			DiscountType:  it.DiscountType,
			DiscountValue: it.DiscountValue,
			VATRate:       it.VATRate,
			LineSubtotal:  it.LineSubtotal,
			LineVAT:       it.LineVAT,
			LineTotal:     it.LineTotal,
		})
	}
	payments := make([]PaymentResponse, 0, len(d.Payments))
	for _, p := range d.Payments {
		payments = append(payments, PaymentResponse{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			ShiftID:   p.ShiftID,
			CreatedAt: p.CreatedAt,
		})
	}
	related := append([]string{}, d.RelatedDocuments...)
	movements := append([]string{}, d.StockMovementIDs...)
	return DocumentResponse{
		ID:      d.ID,
		Number:  d.Number,
		DocType: d.DocType,
		Status:  d.Status,
		Customer: CustomerSnapshotResponse{
			ID:         d.Customer.ID,
			Name:       d.Customer.Name,
			VATNumber:  d.Customer.VATNumber,
			Street:     d.Customer.Street,
			City:       d.Customer.City,
			PostalCode: d.Customer.PostalCode,
			Country:    d.Customer.Country,
			PeppolID:   d.Customer.PeppolID,
		},
		Items:                  items,
		Payments:               payments,
		Subtotal:               d.Subtotal,
		VATTotal:               d.VATTotal,
		Total:                  d.Total,
		PaidTotal:              d.PaidTotal,
		GlobalDiscountType:     d.GlobalDiscountType,
		GlobalDiscountValue:    d.GlobalDiscountValue,
		Notes:                  d.Notes,
		SourceDocumentID:       d.SourceDocumentID,
		RelatedDocuments:       related,
		ReferenceInvoiceID:     d.ReferenceInvoiceID,
		ReferenceInvoiceNumber: d.ReferenceInvoiceNumber,
		ShiftID:                d.ShiftID,
		StockMovementIDs:       movements,
		CreatedBy:              d.CreatedBy,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

// AuditLogResponse entrada de auditoría.
type AuditLogResponse struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	EntityType   string    `json:"entity_type"`
	EntityID     string    `json:"entity_id"`
	EntityNumber string    `json:"entity_number,omitempty"`
	Description  string    `json:"description"`
	Before       any       `json:"before,omitempty"`
	After        any       `json:"after,omitempty"`
	Metadata     any       `json:"metadata,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAuditLogResponse mapea la entrada; los JSON se devuelven tal cual.
func NewAuditLogResponse(l *entity.AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:           l.ID,
		Action:       l.Action,
		EntityType:   l.EntityType,
		EntityID:     l.EntityID,
		EntityNumber: l.EntityNumber,
		Description:  l.Description,
		UserID:       l.UserID,
		CreatedAt:    l.CreatedAt,
	}
	if len(l.Before) > 0 {
		resp.Before = l.Before
	}
	if len(l.After) > 0 {
		resp.After = l.After
	}
	if len(l.Metadata) > 0 {
		resp.Metadata = l.Metadata
	}
	return resp
}
