// Package pricing calcula los importes de un documento a partir de sus líneas (servicio de dominio puro).
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// MoneyPlaces decimales de los importes agregados.
const MoneyPlaces = 2

// IsMoney indica si el importe cabe en céntimos (cobros, efectivo de caja).
func IsMoney(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(MoneyPlaces))
}

var hundred = decimal.NewFromInt(100)

// GlobalDiscountVATRate tasa plana (en %) con la que se recalcula el IVA cuando hay descuento
// global. Reemplaza la mezcla de tasas por línea: es el comportamiento vigente.
var GlobalDiscountVATRate = decimal.NewFromInt(21)

// Result importes calculados. Items es una copia de la entrada con los campos calculados.
type Result struct {
	Items    []entity.DocumentItem
	Subtotal decimal.Decimal
	VATTotal decimal.Decimal
	Total    decimal.Decimal
}

// ValidDiscountType acepta "", none, percent y fixed.
func ValidDiscountType(t string) bool {
	switch t {
	case "", entity.DiscountNone, entity.DiscountPercent, entity.DiscountFixed:
		return true
	}
	return false
}

// ComputeTotals calcula líneas y totales. No redondea por línea (salvo LineTotal) para no
// acumular error; los agregados se redondean una sola vez. No recorta negativos: las notas de
// crédito usan precios unitarios negativos.
func ComputeTotals(items []entity.DocumentItem, globalDiscountType string, globalDiscountValue decimal.Decimal) Result {
	out := make([]entity.DocumentItem, len(items))
	subtotal := decimal.Zero
	vatTotal := decimal.Zero

	for i, item := range items {
		lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lineSubtotal = applyDiscount(lineSubtotal, item.DiscountType, item.DiscountValue)
		lineVAT := lineSubtotal.Mul(item.VATRate).Div(hundred)

		item.LineSubtotal = lineSubtotal
		item.LineVAT = lineVAT
		item.LineTotal = lineSubtotal.Add(lineVAT).Round(MoneyPlaces)
		out[i] = item

		subtotal = subtotal.Add(lineSubtotal)
		vatTotal = vatTotal.Add(lineVAT)
	}

	if globalDiscountType == entity.DiscountPercent || globalDiscountType == entity.DiscountFixed {
		subtotal = applyDiscount(subtotal, globalDiscountType, globalDiscountValue)
		vatTotal = subtotal.Mul(GlobalDiscountVATRate).Div(hundred)
	}

	subtotal = subtotal.Round(MoneyPlaces)
	vatTotal = vatTotal.Round(MoneyPlaces)
	return Result{
		Items:    out,
		Subtotal: subtotal,
		VATTotal: vatTotal,
		Total:    subtotal.Add(vatTotal).Round(MoneyPlaces),
	}
}

func applyDiscount(amount decimal.Decimal, discountType string, value decimal.Decimal) decimal.Decimal {
	switch discountType {
	case entity.DiscountPercent:
		return amount.Sub(amount.Mul(value).Div(hundred))
	case entity.DiscountFixed:
		return amount.Sub(value)
	}
	return amount
}
