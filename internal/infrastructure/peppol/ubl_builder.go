// Package peppol genera el XML UBL 2.1 (Peppol BIS Billing 3.0) de facturas y notas de crédito.
// Solo generación: el envío por la red Peppol queda fuera.
package peppol

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/documents"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
)

// Namespaces UBL 2.1.
const (
	NsInvoice    = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCreditNote = "urn:oasis:names:specification:ubl:schema:xsd:CreditNote-2"
	NsCac        = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc        = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// Identificadores Peppol BIS Billing 3.0.
const (
	CustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:fdc:peppol.eu:2017:poacc:billing:3.0"
	ProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	currency = "EUR"
	// Número de empresa belga (BCE/KBO).
	defaultScheme = "0208"
	// Plazo de pago por defecto de una factura.
	paymentTermDays = 30
)

// Códigos UNCL4461 por medio de pago.
var paymentMeansCodes = map[string]string{
	entity.PaymentCash:         "10",
	entity.PaymentCard:         "48",
	entity.PaymentBankTransfer: "30",
}

var _ documents.UBLBuilder = (*UBLBuilder)(nil)

// UBLBuilder construye el XML con etree.
type UBLBuilder struct{}

// NewUBLBuilder crea el builder.
func NewUBLBuilder() *UBLBuilder { return &UBLBuilder{} }

// BuildUBL genera Invoice (380) o CreditNote (381). Los importes de una nota de crédito
// se emiten en positivo, como exige UBL.
func (b *UBLBuilder) BuildUBL(doc *entity.Document, issuer entity.Company) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: documento nil", domain.ErrInvalidInput)
	}
	var rootTag, typeTag, typeCode, lineTag, qtyTag, ns string
	sign := decimal.NewFromInt(1)
	switch doc.DocType {
	case entity.DocTypeInvoice:
		rootTag, typeTag, typeCode, lineTag, qtyTag, ns = "Invoice", "cbc:InvoiceTypeCode", "380", "cac:InvoiceLine", "cbc:InvoicedQuantity", NsInvoice
	case entity.DocTypeCreditNote:
		rootTag, typeTag, typeCode, lineTag, qtyTag, ns = "CreditNote", "cbc:CreditNoteTypeCode", "381", "cac:CreditNoteLine", "cbc:CreditedQuantity", NsCreditNote
		sign = decimal.NewFromInt(-1)
	default:
		return nil, fmt.Errorf("%w: UBL solo para facturas y notas de crédito (%s)", domain.ErrInvalidInput, doc.DocType)
	}

	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := x.CreateElement(rootTag)
	root.CreateAttr("xmlns", ns)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	// ── 1. Cabecera ──
	root.CreateElement("cbc:CustomizationID").SetText(CustomizationID)
	root.CreateElement("cbc:ProfileID").SetText(ProfileID)
	root.CreateElement("cbc:ID").SetText(doc.Number)
	root.CreateElement("cbc:IssueDate").SetText(doc.CreatedAt.Format("2006-01-02"))
	if doc.DocType == entity.DocTypeInvoice {
		root.CreateElement("cbc:DueDate").SetText(doc.CreatedAt.AddDate(0, 0, paymentTermDays).Format("2006-01-02"))
	}
	root.CreateElement(typeTag).SetText(typeCode)
	if doc.Notes != "" {
		root.CreateElement("cbc:Note").SetText(doc.Notes)
	}
	root.CreateElement("cbc:DocumentCurrencyCode").SetText(currency)
	root.CreateElement("cbc:BuyerReference").SetText(nonEmpty(doc.Customer.ID, doc.Number))
	if doc.DocType == entity.DocTypeCreditNote && doc.ReferenceInvoiceNumber != "" {
		ref := root.CreateElement("cac:BillingReference").CreateElement("cac:InvoiceDocumentReference")
		ref.CreateElement("cbc:ID").SetText(doc.ReferenceInvoiceNumber)
	}

	// ── 2. Partes ──
	writeParty(root.CreateElement("cac:AccountingSupplierParty"), party{
		Name: issuer.Name, VATNumber: issuer.VATNumber, PeppolID: issuer.PeppolID,
		Street: issuer.Street, City: issuer.City, PostalCode: issuer.PostalCode, Country: issuer.Country,
	})
	c := doc.Customer
	writeParty(root.CreateElement("cac:AccountingCustomerParty"), party{
		Name: nonEmpty(c.Name, "Client comptoir"), VATNumber: c.VATNumber, PeppolID: c.PeppolID,
		Street: c.Street, City: c.City, PostalCode: c.PostalCode, Country: c.Country,
	})

	// ── 3. Medio de pago ──
	means := root.CreateElement("cac:PaymentMeans")
	means.CreateElement("cbc:PaymentMeansCode").SetText(paymentMeansCode(doc))
	means.CreateElement("cbc:PaymentID").SetText(doc.Number)

	// ── 4. Descuento global e impuestos ──
	lineExtension := decimal.Zero
	for _, it := range doc.Items {
		lineExtension = lineExtension.Add(it.LineSubtotal)
	}
	lineExtension = lineExtension.Mul(sign).Round(pricing.MoneyPlaces)
	taxExclusive := doc.Subtotal.Mul(sign)
	allowance := lineExtension.Sub(taxExclusive)
	hasGlobal := doc.GlobalDiscountType == entity.DiscountPercent || doc.GlobalDiscountType == entity.DiscountFixed
	if hasGlobal && !allowance.IsZero() {
		ac := root.CreateElement("cac:AllowanceCharge")
		ac.CreateElement("cbc:ChargeIndicator").SetText("false")
		ac.CreateElement("cbc:AllowanceChargeReason").SetText("Remise globale")
		amount(ac, "cbc:Amount", allowance)
		writeTaxCategory(ac.CreateElement("cac:TaxCategory"), pricing.GlobalDiscountVATRate)
	}

	taxTotal := root.CreateElement("cac:TaxTotal")
	amount(taxTotal, "cbc:TaxAmount", doc.VATTotal.Mul(sign))
	for _, g := range taxGroups(doc, sign, hasGlobal) {
		sub := taxTotal.CreateElement("cac:TaxSubtotal")
		amount(sub, "cbc:TaxableAmount", g.taxable)
		amount(sub, "cbc:TaxAmount", g.tax)
		writeTaxCategory(sub.CreateElement("cac:TaxCategory"), g.rate)
	}

	// ── 5. Totales ──
	total := doc.Total.Mul(sign)
	prepaid := doc.PaidTotal.Mul(sign)
	mt := root.CreateElement("cac:LegalMonetaryTotal")
	amount(mt, "cbc:LineExtensionAmount", lineExtension)
	amount(mt, "cbc:TaxExclusiveAmount", taxExclusive)
	amount(mt, "cbc:TaxInclusiveAmount", total)
	if hasGlobal && !allowance.IsZero() {
		amount(mt, "cbc:AllowanceTotalAmount", allowance)
	}
	if !prepaid.IsZero() {
		amount(mt, "cbc:PrepaidAmount", prepaid)
	}
	amount(mt, "cbc:PayableAmount", total.Sub(prepaid))

	// ── 6. Líneas ──
	for i, it := range doc.Items {
		line := root.CreateElement(lineTag)
		line.CreateElement("cbc:ID").SetText(fmt.Sprint(i + 1))
		q := line.CreateElement(qtyTag)
		q.CreateAttr("unitCode", "C62")
		q.SetText(fmt.Sprint(it.Quantity))
		amount(line, "cbc:LineExtensionAmount", it.LineSubtotal.Mul(sign).Round(pricing.MoneyPlaces))

		item := line.CreateElement("cac:Item")
		item.CreateElement("cbc:Name").SetText(it.Name)
		if it.SKU != "" {
			item.CreateElement("cac:SellersItemIdentification").CreateElement("cbc:ID").SetText(it.SKU)
		}
		cat := item.CreateElement("cac:ClassifiedTaxCategory")
		cat.CreateElement("cbc:ID").SetText(taxCategoryID(it.VATRate))
		cat.CreateElement("cbc:Percent").SetText(it.VATRate.String())
		cat.CreateElement("cac:TaxScheme").CreateElement("cbc:ID").SetText("VAT")

		// Precio neto efectivo: incluye el descuento de línea.
		net := decimal.Zero
		if it.Quantity != 0 {
			net = it.LineSubtotal.Div(decimal.NewFromInt(int64(it.Quantity))).Mul(sign)
		}
		amount(line.CreateElement("cac:Price"), "cbc:PriceAmount", net)
	}

	x.Indent(2)
	var buf bytes.Buffer
	if _, err := x.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("peppol: serializar %s: %w", doc.Number, err)
	}
	return buf.Bytes(), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

type party struct {
	Name       string
	VATNumber  string
	PeppolID   string
	Street     string
	City       string
	PostalCode string
	Country    string
}

func writeParty(parent *etree.Element, p party) {
	el := parent.CreateElement("cac:Party")
	if p.PeppolID != "" {
		scheme, id := splitPeppolID(p.PeppolID)
		ep := el.CreateElement("cbc:EndpointID")
		ep.CreateAttr("schemeID", scheme)
		ep.SetText(id)
	}
	el.CreateElement("cac:PartyName").CreateElement("cbc:Name").SetText(p.Name)

	addr := el.CreateElement("cac:PostalAddress")
	if p.Street != "" {
		addr.CreateElement("cbc:StreetName").SetText(p.Street)
	}
	if p.City != "" {
		addr.CreateElement("cbc:CityName").SetText(p.City)
	}
	if p.PostalCode != "" {
		addr.CreateElement("cbc:PostalZone").SetText(p.PostalCode)
	}
	addr.CreateElement("cac:Country").CreateElement("cbc:IdentificationCode").SetText(nonEmpty(p.Country, "BE"))

	if p.VATNumber != "" {
		ts := el.CreateElement("cac:PartyTaxScheme")
		ts.CreateElement("cbc:CompanyID").SetText(p.VATNumber)
		ts.CreateElement("cac:TaxScheme").CreateElement("cbc:ID").SetText("VAT")
	}
	el.CreateElement("cac:PartyLegalEntity").CreateElement("cbc:RegistrationName").SetText(p.Name)
}

// splitPeppolID separa "0208:0123456789". Sin esquema se asume el número de empresa belga.
func splitPeppolID(v string) (scheme, id string) {
	if s, rest, ok := strings.Cut(v, ":"); ok {
		return s, rest
	}
	return defaultScheme, v
}

type taxGroup struct {
	rate    decimal.Decimal
	taxable decimal.Decimal
	tax     decimal.Decimal
}

// taxGroups desglose por tasa. Con descuento global el IVA del documento se calcula a tasa
// plana, así que el desglose también.
func taxGroups(doc *entity.Document, sign decimal.Decimal, hasGlobal bool) []taxGroup {
	if hasGlobal {
		return []taxGroup{{
			rate:    pricing.GlobalDiscountVATRate,
			taxable: doc.Subtotal.Mul(sign),
			tax:     doc.VATTotal.Mul(sign),
		}}
	}
	byRate := map[string]*taxGroup{}
	for _, it := range doc.Items {
		key := it.VATRate.String()
		g, ok := byRate[key]
		if !ok {
			g = &taxGroup{rate: it.VATRate}
			byRate[key] = g
		}
		g.taxable = g.taxable.Add(it.LineSubtotal)
		g.tax = g.tax.Add(it.LineVAT)
	}
	out := make([]taxGroup, 0, len(byRate))
	for _, g := range byRate {
		out = append(out, taxGroup{
			rate:    g.rate,
			taxable: g.taxable.Mul(sign).Round(pricing.MoneyPlaces),
			tax:     g.tax.Mul(sign).Round(pricing.MoneyPlaces),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rate.GreaterThan(out[j].rate) })
	return out
}

func writeTaxCategory(el *etree.Element, rate decimal.Decimal) {
	el.CreateElement("cbc:ID").SetText(taxCategoryID(rate))
	el.CreateElement("cbc:Percent").SetText(rate.String())
	el.CreateElement("cac:TaxScheme").CreateElement("cbc:ID").SetText("VAT")
}

// taxCategoryID UNCL5305: S estándar, Z tasa cero.
func taxCategoryID(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "Z"
	}
	return "S"
}

func paymentMeansCode(doc *entity.Document) string {
	if len(doc.Payments) > 0 {
		if code, ok := paymentMeansCodes[doc.Payments[0].Method]; ok {
			return code
		}
	}
	return paymentMeansCodes[entity.PaymentBankTransfer]
}

func amount(parent *etree.Element, tag string, v decimal.Decimal) {
	el := parent.CreateElement(tag)
	el.CreateAttr("currencyID", currency)
	el.SetText(v.StringFixed(pricing.MoneyPlaces))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
