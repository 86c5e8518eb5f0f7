// Package pdf genera la representación imprimible (A4) de los documentos comerciales.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + N° IVA     │  Tipo + Número + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel / Email                            │
//	│  CLIENTE: Nombre + N° IVA + dirección                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Desc. | IVA | Total   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: HTVA / TVA / TVAC / Pagado                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + referencia de nota de crédito │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/documents"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

var _ documents.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// Títulos impresos (la tienda factura en francés).
var docTitles = map[string]string{
	entity.DocTypeQuote:         "DEVIS",
	entity.DocTypeInvoice:       "FACTURE",
	entity.DocTypeReceipt:       "TICKET DE CAISSE",
	entity.DocTypeProforma:      "FACTURE PROFORMA",
	entity.DocTypeCreditNote:    "NOTE DE CRÉDIT",
	entity.DocTypeDeliveryNote:  "BON DE LIVRAISON",
	entity.DocTypePurchaseOrder: "BON DE COMMANDE",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa documents.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDocumentPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDocumentPDF(_ context.Context, doc *entity.Document, issuer entity.Company) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title(doc.DocType)+" "+doc.Number, true).
		WithAuthor(issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, issuer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(issuer))
	if doc.HasCustomer() {
		m.AddRows(customerRow(doc.Customer))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(doc.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(doc)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tienda + N° IVA (izq) y tipo + número + fecha (der).
func headerRow(doc *entity.Document, issuer entity.Company) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(issuer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("TVA: "+nonEmpty(issuer.VATNumber, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title(doc.DocType), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(doc.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+doc.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func issuerRow(issuer entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(address(issuer.Street, issuer.PostalCode, issuer.City, issuer.Country), props.Text{
				Size: 8, Top: 1, Color: colorGray,
			}),
			text.New(fmt.Sprintf("Tél: %s   |   Email: %s",
				nonEmpty(issuer.Phone, "—"),
				nonEmpty(issuer.Email, "—"),
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

func customerRow(c entity.CustomerSnapshot) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("CLIENT", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(c.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 5,
			}),
			text.New(fmt.Sprintf("TVA: %s   |   %s",
				nonEmpty(c.VATNumber, "—"),
				address(c.Street, c.PostalCode, c.City, c.Country),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qté", 1, align.Center),
		h("Description", 5, align.Left),
		h("P.U. HTVA", 2, align.Right),
		h("Remise", 1, align.Center),
		h("TVA", 1, align.Center),
		h("Total TVAC", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableItemRows(items []entity.DocumentItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprint(it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				it.SKU+"  "+it.Name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatEuro(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				discountLabel(it.DiscountType, it.DiscountValue),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				it.VATRate.String()+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				formatEuro(it.LineTotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRows una fila por total; el texto apilado en una sola columna se superpone.
func totalsRows(doc *entity.Document) []core.Row {
	totalLine := func(label, value string, grand bool) core.Row {
		p := props.Text{Size: 9, Align: align.Right, Top: 1}
		if grand {
			p.Style, p.Size, p.Color = fontstyle.Bold, 10, colorPrimary
		}
		lp := p
		lp.Style, lp.Right = fontstyle.Bold, 2
		vp := p
		vp.Right = 1
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, lp)),
			col.New(3).Add(text.New(value, vp)),
		)
	}

	var rows []core.Row
	if d := discountLabel(doc.GlobalDiscountType, doc.GlobalDiscountValue); d != "" {
		rows = append(rows, totalLine("Remise globale:", d, false))
	}
	rows = append(rows,
		totalLine("Total HTVA:", formatEuro(doc.Subtotal), false),
		totalLine("TVA:", formatEuro(doc.VATTotal), false),
		totalLine("TOTAL TVAC:", formatEuro(doc.Total), true),
	)
	if !doc.PaidTotal.IsZero() {
		rows = append(rows, totalLine("Payé:", formatEuro(doc.PaidTotal), false))
	}
	return rows
}

func footerRows(doc *entity.Document) []core.Row {
	var rows []core.Row
	if doc.ReferenceInvoiceNumber != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Note de crédit relative au document "+doc.ReferenceInvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 1,
			}),
		)))
	}
	if doc.Notes != "" {
		for _, l := range strings.Split(doc.Notes, "\n") {
			rows = append(rows, row.New(5).Add(col.New(12).Add(
				text.New(l, props.Text{Size: 8, Color: colorGray, Top: 1}),
			)))
		}
	}
	rows = append(rows, row.New(3))
	rows = append(rows, row.New(30).Add(
		col.New(3).Add(code.NewQr(qrPayload(doc), props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Scannez le code pour vérifier ce document.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
		),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func title(docType string) string {
	if t, ok := docTitles[docType]; ok {
		return t
	}
	return strings.ToUpper(docType)
}

func qrPayload(doc *entity.Document) string {
	return fmt.Sprintf("%s|%s|%s", doc.Number, doc.CreatedAt.Format("2006-01-02"), doc.Total.StringFixed(2))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func address(street, postalCode, city, country string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{street, strings.TrimSpace(postalCode + " " + city), country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return nonEmpty(strings.Join(parts, ", "), "—")
}

func discountLabel(discountType string, value decimal.Decimal) string {
	switch discountType {
	case entity.DiscountPercent:
		return value.String() + "%"
	case entity.DiscountFixed:
		return formatEuro(value)
	}
	return ""
}

// formatEuro formato belga: separador de miles "." y decimal ",". Ej: 1234.5 → "1.234,50 €".
func formatEuro(v decimal.Decimal) string {
	s := v.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac + " €"
}
