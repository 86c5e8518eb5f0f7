package shift

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
)

// ZReport agrega los documentos atribuidos al turno: por tasa de IVA, por tipo de documento y
// cobros por medio de pago. Es una consulta de solo lectura; se puede pedir con el turno abierto.
func (r *Register) ZReport(ctx context.Context, shiftID string) (*dto.ZReportResponse, error) {
	sh, err := r.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	docs, err := r.documents.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	vatByRate := map[string]*dto.ZReportVATLine{}
	addVAT := func(rate, net, vat decimal.Decimal) {
		key := rate.String()
		line, ok := vatByRate[key]
		if !ok {
			line = &dto.ZReportVATLine{Rate: rate, Net: decimal.Zero, VAT: decimal.Zero}
			vatByRate[key] = line
		}
		line.Net = line.Net.Add(net)
		line.VAT = line.VAT.Add(vat)
	}
	byType := map[string]*dto.ZReportDocTypeLine{}
	byMethod := map[string]*dto.ZReportPaymentLine{}

	for _, doc := range docs {
		t, ok := byType[doc.DocType]
		if !ok {
			t = &dto.ZReportDocTypeLine{DocType: doc.DocType, Total: decimal.Zero}
			byType[doc.DocType] = t
		}
		t.Count++
		t.Total = t.Total.Add(doc.Total)

		if fiscal(doc.DocType) {
			if doc.GlobalDiscountType == entity.DiscountPercent || doc.GlobalDiscountType == entity.DiscountFixed {
				// Con descuento global el IVA del documento es plano, igual que en el cálculo.
				addVAT(pricing.GlobalDiscountVATRate, doc.Subtotal, doc.VATTotal)
			} else {
				for _, it := range doc.Items {
					addVAT(it.VATRate, it.LineSubtotal, it.LineVAT)
				}
			}
		}

		for _, p := range doc.Payments {
			if p.ShiftID != shiftID {
				continue
			}
			m, ok := byMethod[p.Method]
			if !ok {
				m = &dto.ZReportPaymentLine{Method: p.Method, Amount: decimal.Zero}
				byMethod[p.Method] = m
			}
			m.Count++
			m.Amount = m.Amount.Add(p.Amount)
		}
	}

	report := &dto.ZReportResponse{
		Shift:         dto.NewShiftResponse(sh),
		GeneratedAt:   r.now().UTC(),
		DocumentCount: len(docs),
		ByVATRate:     make([]dto.ZReportVATLine, 0, len(vatByRate)),
		ByDocType:     make([]dto.ZReportDocTypeLine, 0, len(byType)),
		Payments:      make([]dto.ZReportPaymentLine, 0, len(byMethod)),
		ExpectedCash:  ExpectedCash(sh),
	}
	for _, line := range vatByRate {
		line.Net = line.Net.Round(pricing.MoneyPlaces)
		line.VAT = line.VAT.Round(pricing.MoneyPlaces)
		line.Gross = line.Net.Add(line.VAT)
		report.ByVATRate = append(report.ByVATRate, *line)
	}
	sort.Slice(report.ByVATRate, func(i, j int) bool { return report.ByVATRate[i].Rate.LessThan(report.ByVATRate[j].Rate) })
	for _, t := range byType {
		report.ByDocType = append(report.ByDocType, *t)
	}
	sort.Slice(report.ByDocType, func(i, j int) bool { return report.ByDocType[i].DocType < report.ByDocType[j].DocType })
	for _, m := range byMethod {
		report.Payments = append(report.Payments, *m)
	}
	sort.Slice(report.Payments, func(i, j int) bool { return report.Payments[i].Method < report.Payments[j].Method })

	if !sh.IsOpen() {
		report.ExpectedCash = sh.ClosingCash
	}
	return report, nil
}

// fiscal tipos que cuentan en el desglose de IVA del turno.
func fiscal(docType string) bool {
	return docType == entity.DocTypeInvoice || docType == entity.DocTypeReceipt || docType == entity.DocTypeCreditNote
}
