package documents

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ItemInput línea tal como llega para crear un documento. Los importes calculados no se
// aceptan de fuera: los pone siempre el motor de precios.
type ItemInput struct {
	ProductID     string
	SKU           string
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	DiscountType  string
	DiscountValue decimal.Decimal
	VATRate       decimal.Decimal
}

// ItemInputFromItem mapea campo a campo una línea existente a la forma de creación.
func ItemInputFromItem(it entity.DocumentItem) ItemInput {
	return ItemInput{
		ProductID:     it.ProductID,
		SKU:           it.SKU,
		Name:          it.Name,
		Quantity:      it.Quantity,
		UnitPrice:     it.UnitPrice,
		DiscountType:  it.DiscountType,
		DiscountValue: it.DiscountValue,
		VATRate:       it.VATRate,
	}
}

func (in ItemInput) toItem() entity.DocumentItem {
	discountType := in.DiscountType
	if discountType == "" {
		discountType = entity.DiscountNone
	}
	return entity.DocumentItem{
		ProductID:     in.ProductID,
		SKU:           in.SKU,
		Name:          in.Name,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		DiscountType:  discountType,
		DiscountValue: in.DiscountValue,
		VATRate:       in.VATRate,
	}
}

// PaymentInput cobro entregado al crear el documento.
type PaymentInput struct {
	Method    string
	Amount    decimal.Decimal
	Reference string
}

// CreateDocumentInput entrada de CreateDocument. ShiftID es el turno abierto que resolvió
// el llamador (vacío si no hay); no se busca dentro del motor.
type CreateDocumentInput struct {
	DocType             string
	CustomerID          string
	Items               []ItemInput
	Payments            []PaymentInput
	GlobalDiscountType  string
	GlobalDiscountValue decimal.Decimal
	Notes               string
	SourceDocumentID    string
	ShiftID             string
	UserID              string

	// customer snapshot heredado (conversión, duplicado); evita releer un cliente que pudo cambiar.
	customer *entity.CustomerSnapshot
}

// AddPaymentInput entrada de AddPayment.
type AddPaymentInput struct {
	DocumentID string
	Method     string
	Amount     decimal.Decimal
	Reference  string
	ShiftID    string
	UserID     string
}

// ConvertInput entrada de ConvertDocument.
type ConvertInput struct {
	DocumentID string
	TargetType string
	ShiftID    string
	UserID     string
}

// DuplicateInput entrada de DuplicateDocument.
type DuplicateInput struct {
	DocumentID string
	ShiftID    string
	UserID     string
}

// ReturnLine línea devuelta: índice de la línea original y cantidad (1..cantidad original).
type ReturnLine struct {
	ItemIndex int
	Quantity  int
}

// ReturnInput entrada de CreateReturn. Sin líneas se devuelve el documento completo.
// Con RefundMethod el reembolso se paga en el acto.
type ReturnInput struct {
	DocumentID   string
	Lines        []ReturnLine
	RefundMethod string
	Notes        string
	ShiftID      string
	UserID       string
}

// ChangeStatusInput entrada de ChangeStatus.
type ChangeStatusInput struct {
	DocumentID string
	Status     string
	UserID     string
}

// StockSkip línea cuyo movimiento de stock no se pudo registrar porque el producto no existe.
type StockSkip struct {
	ItemIndex int    `json:"item_index"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Reason    string `json:"reason"`
}

func validPaymentMethod(m string) bool {
	switch m {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentBankTransfer:
		return true
	}
	return false
}
