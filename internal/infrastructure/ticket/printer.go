// Package ticket arma el ticket de caja para impresoras térmicas (ESC/POS, página de códigos 850).
package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/pos-api/internal/application/documents"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Width columnas de una impresora de 80 mm con fuente A.
const Width = 42

// Comandos ESC/POS.
var (
	escInit     = []byte{0x1B, 0x40}
	escCodePage = []byte{0x1B, 0x74, 0x02} // PC850
	escCenter   = []byte{0x1B, 0x61, 0x01}
	escLeft     = []byte{0x1B, 0x61, 0x00}
	escCut      = []byte{0x1D, 0x56, 0x42, 0x00}
)

var methodLabels = map[string]string{
	entity.PaymentCash:         "Espèces",
	entity.PaymentCard:         "Carte",
	entity.PaymentBankTransfer: "Virement",
}

var _ documents.TicketPrinter = (*Printer)(nil)

// Printer genera el ticket. Con Raw se omiten los comandos ESC/POS (solo texto).
type Printer struct {
	Raw bool
}

// NewPrinter crea la impresora con comandos ESC/POS.
func NewPrinter() *Printer { return &Printer{} }

// PrintTicket devuelve el ticket codificado en CP850.
func (p *Printer) PrintTicket(doc *entity.Document, issuer entity.Company) ([]byte, error) {
	var body strings.Builder

	// ── 1. Cabecera centrada ──
	header := []string{issuer.Name}
	if issuer.Street != "" {
		header = append(header, issuer.Street)
	}
	if city := strings.TrimSpace(issuer.PostalCode + " " + issuer.City); city != "" {
		header = append(header, city)
	}
	if issuer.VATNumber != "" {
		header = append(header, "TVA "+issuer.VATNumber)
	}
	for _, l := range header {
		body.WriteString(center(l) + "\n")
	}
	body.WriteString(rule('='))
	body.WriteString(doc.Number + "\n")
	body.WriteString(doc.CreatedAt.Format("02/01/2006 15:04") + "\n")
	if doc.Customer.Name != "" {
		body.WriteString("Client: " + doc.Customer.Name + "\n")
	}
	if doc.ReferenceInvoiceNumber != "" {
		body.WriteString("Réf.: " + doc.ReferenceInvoiceNumber + "\n")
	}
	body.WriteString(rule('-'))

	// ── 2. Líneas ──
	for _, it := range doc.Items {
		body.WriteString(clip(it.Name, Width) + "\n")
		qty := fmt.Sprintf("  %d x %s", it.Quantity, money(it.UnitPrice))
		body.WriteString(columns(qty, money(it.LineTotal)+" "+vatCode(it.VATRate)) + "\n")
	}
	body.WriteString(rule('-'))

	// ── 3. Totales ──
	body.WriteString(columns("Total HTVA", money(doc.Subtotal)) + "\n")
	for _, v := range vatBreakdown(doc) {
		body.WriteString(v + "\n")
	}
	body.WriteString(columns("TVA", money(doc.VATTotal)) + "\n")
	body.WriteString(columns("TOTAL EUR", money(doc.Total)) + "\n")
	for _, pay := range doc.Payments {
		label := methodLabels[pay.Method]
		if label == "" {
			label = pay.Method
		}
		body.WriteString(columns("  "+label, money(pay.Amount)) + "\n")
	}
	if change := doc.PaidTotal.Sub(doc.Total); change.IsPositive() {
		body.WriteString(columns("Rendu", money(change)) + "\n")
	}
	body.WriteString(rule('='))
	body.WriteString(center("Merci de votre visite") + "\n")

	// Caracteres fuera de CP850 (p. ej. "€") se sustituyen por el carácter de reemplazo.
	encoded, err := encoding.ReplaceUnsupported(charmap.CodePage850.NewEncoder()).String(body.String())
	if err != nil {
		return nil, fmt.Errorf("ticket: codificar %s en CP850: %w", doc.Number, err)
	}
	if p.Raw {
		return []byte(encoded), nil
	}

	var out bytes.Buffer
	out.Write(escInit)
	out.Write(escCodePage)
	out.Write(escCenter)
	out.WriteString(encoded)
	out.Write(escLeft)
	out.WriteString("\n\n\n")
	out.Write(escCut)
	return out.Bytes(), nil
}

// vatBreakdown una línea por tasa: "A 21% 9,00 / 1,89". Con descuento global el IVA
// del documento es plano y el desglose por línea no cuadra, así que se omite.
func vatBreakdown(doc *entity.Document) []string {
	if doc.GlobalDiscountType == entity.DiscountPercent || doc.GlobalDiscountType == entity.DiscountFixed {
		return nil
	}
	type acc struct{ net, vat decimal.Decimal }
	order := []string{}
	byCode := map[string]*acc{}
	for _, it := range doc.Items {
		code := vatCode(it.VATRate) + " " + it.VATRate.String() + "%"
		a, ok := byCode[code]
		if !ok {
			a = &acc{}
			byCode[code] = a
			order = append(order, code)
		}
		a.net = a.net.Add(it.LineSubtotal)
		a.vat = a.vat.Add(it.LineVAT)
	}
	out := make([]string, 0, len(order))
	for _, code := range order {
		a := byCode[code]
		out = append(out, fmt.Sprintf("  %s %s / %s", code, money(a.net.Round(2)), money(a.vat.Round(2))))
	}
	return out
}

// vatCode letra de tasa impresa en el ticket (códigos belgas A=21, B=12, C=6, D=0).
func vatCode(rate decimal.Decimal) string {
	switch {
	case rate.Equal(decimal.NewFromInt(21)):
		return "A"
	case rate.Equal(decimal.NewFromInt(12)):
		return "B"
	case rate.Equal(decimal.NewFromInt(6)):
		return "C"
	case rate.IsZero():
		return "D"
	}
	return "X"
}

func money(v decimal.Decimal) string {
	return strings.Replace(v.StringFixed(2), ".", ",", 1)
}

func columns(left, right string) string {
	space := Width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if space < 1 {
		left = clip(left, Width-utf8.RuneCountInString(right)-1)
		space = 1
	}
	return left + strings.Repeat(" ", space) + right
}

func center(s string) string {
	s = clip(s, Width)
	pad := (Width - utf8.RuneCountInString(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func rule(c rune) string {
	return strings.Repeat(string(c), Width) + "\n"
}

func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
