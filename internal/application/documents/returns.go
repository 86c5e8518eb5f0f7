package documents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/document"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ReturnNamePrefix prefijo de las líneas de una nota de crédito.
const ReturnNamePrefix = "RETOUR: "

// CreateReturn emite una nota de crédito (total o parcial) contra una factura o ticket,
// repone el stock y marca el original como acreditado.
func (e *Engine) CreateReturn(ctx context.Context, in ReturnInput) (*entity.Document, error) {
	if in.RefundMethod != "" && !validPaymentMethod(in.RefundMethod) {
		return nil, fmt.Errorf("%w: medio de reembolso %q", domain.ErrInvalidInput, in.RefundMethod)
	}

	var created *entity.Document
	err := e.txRunner.Run(ctx, func(repos repository.Repos) error {
		orig, err := lockDocument(ctx, repos, in.DocumentID)
		if err != nil {
			return err
		}
		if !document.Creditable(orig.DocType) {
			return fmt.Errorf("%w: %s es %s", domain.ErrNotCreditable, orig.Number, orig.DocType)
		}
		if orig.Status == entity.DocStatusCredited {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyCredited, orig.Number)
		}
		lines, err := resolveReturnLines(orig, in.Lines)
		if err != nil {
			return err
		}
		if in.ShiftID != "" {
			sh, err := repos.Shifts.GetForUpdate(ctx, in.ShiftID)
			if err != nil {
				return err
			}
			if sh == nil {
				return fmt.Errorf("%w: turno %s", domain.ErrNotFound, in.ShiftID)
			}
			if !sh.IsOpen() {
				return fmt.Errorf("%w: turno %s", domain.ErrShiftClosed, in.ShiftID)
			}
		}
		origBefore := dto.NewDocumentResponse(orig)
		now := e.now().UTC()

		// ── 1. Líneas en negativo ──
		items := make([]entity.DocumentItem, 0, len(lines))
		returnedNet := decimal.Zero
		for _, l := range lines {
			src := orig.Items[l.ItemIndex]
			unitNet := src.LineSubtotal.Div(decimal.NewFromInt(int64(src.Quantity)))
			returnedNet = returnedNet.Add(unitNet.Mul(decimal.NewFromInt(int64(l.Quantity))))
			items = append(items, entity.DocumentItem{
				ProductID:    src.ProductID,
				SKU:          src.SKU,
				Name:         ReturnNamePrefix + src.Name,
				Quantity:     l.Quantity,
				UnitPrice:    unitNet.Neg(),
				DiscountType: entity.DiscountNone,
				VATRate:      src.VATRate,
			})
		}

		// ── 2. Descuento global ──
		globalType := entity.DiscountNone
		globalValue := decimal.Zero
		switch orig.GlobalDiscountType {
		case entity.DiscountPercent:
			globalType = entity.DiscountPercent
			globalValue = orig.GlobalDiscountValue
		case entity.DiscountFixed:
			origNet := decimal.Zero
			for _, it := range orig.Items {
				origNet = origNet.Add(it.LineSubtotal)
			}
			globalType = entity.DiscountFixed
			if !origNet.IsZero() {
				// el subtotal es negativo: el descuento proporcional también
				globalValue = orig.GlobalDiscountValue.Mul(returnedNet).Div(origNet).Round(pricing.MoneyPlaces).Neg()
			}
		}
		totals := pricing.ComputeTotals(items, globalType, globalValue)

		number, err := nextNumber(ctx, repos, entity.DocTypeCreditNote, now)
		if err != nil {
			return err
		}
		cn := &entity.Document{
			ID:                     uuid.New().String(),
			Number:                 number,
			DocType:                entity.DocTypeCreditNote,
			Status:                 entity.DocStatusUnpaid,
			Customer:               orig.Customer,
			Items:                  totals.Items,
			Payments:               []entity.Payment{},
			Subtotal:               totals.Subtotal,
			VATTotal:               totals.VATTotal,
			Total:                  totals.Total,
			PaidTotal:              decimal.Zero,
			GlobalDiscountType:     globalType,
			GlobalDiscountValue:    globalValue,
			Notes:                  in.Notes,
			SourceDocumentID:       orig.ID,
			RelatedDocuments:       []string{},
			ReferenceInvoiceID:     orig.ID,
			ReferenceInvoiceNumber: orig.Number,
			ShiftID:                in.ShiftID,
			StockMovementIDs:       []string{},
			CreatedBy:              in.UserID,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if in.RefundMethod != "" {
			cn.Payments = append(cn.Payments, entity.Payment{
				ID:        uuid.New().String(),
				Method:    in.RefundMethod,
				Amount:    cn.Total,
				ShiftID:   in.ShiftID,
				CreatedAt: now,
			})
			cn.PaidTotal = cn.Total
			cn.Status = entity.DocStatusPaid
		}

		// ── 3. Stock ──
		skipped, err := e.recordItemMovements(ctx, repos, cn, entity.MovementReturn, cn.Items, in.UserID)
		if err != nil {
			return err
		}
		if err := repos.Documents.Create(ctx, cn); err != nil {
			return err
		}

		// ── 4. Turno ──
		refund := cn.Total.Neg()
		if in.ShiftID != "" {
			if err := e.shifts.RecordRefund(ctx, repos, in.ShiftID, refund, in.RefundMethod); err != nil {
				return err
			}
		}

		// ── 5. Original ──
		orig.Status = entity.DocStatusCredited
		orig.RelatedDocuments = append(orig.RelatedDocuments, cn.ID)
		orig.UpdatedAt = now
		if err := repos.Documents.Update(ctx, orig); err != nil {
			return err
		}

		// ── 6. Auditoría ──
		meta := map[string]any{
			"reference_invoice_id":     orig.ID,
			"reference_invoice_number": orig.Number,
			"refund_total":             refund,
			"refund_method":            in.RefundMethod,
		}
		if len(skipped) > 0 {
			meta["stock_skipped"] = skipped
		}
		if _, err := e.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:       entity.AuditCreditNote,
			EntityType:   entity.AuditEntityDocument,
			EntityID:     cn.ID,
			EntityNumber: cn.Number,
			Description:  fmt.Sprintf("nota de crédito %s sobre %s", cn.Number, orig.Number),
			After:        dto.NewDocumentResponse(cn),
			Metadata:     meta,
			UserID:       in.UserID,
		}); err != nil {
			return err
		}
		if _, err := e.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:       entity.AuditCreditNote,
			EntityType:   entity.AuditEntityDocument,
			EntityID:     orig.ID,
			EntityNumber: orig.Number,
			Description:  fmt.Sprintf("%s acreditado por %s", orig.Number, cn.Number),
			Before:       origBefore,
			After:        dto.NewDocumentResponse(orig),
			Metadata: map[string]any{
				"credit_note_id":     cn.ID,
				"credit_note_number": cn.Number,
			},
			UserID: in.UserID,
		}); err != nil {
			return err
		}
		created = cn
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("number", created.Number).
		Str("reference", created.ReferenceInvoiceNumber).
		Str("total", created.Total.StringFixed(pricing.MoneyPlaces)).
		Msg("nota de crédito emitida")
	return created, nil
}

// resolveReturnLines valida las líneas pedidas. Sin líneas se devuelve todo el documento.
func resolveReturnLines(orig *entity.Document, requested []ReturnLine) ([]ReturnLine, error) {
	if len(requested) == 0 {
		all := make([]ReturnLine, 0, len(orig.Items))
		for i, it := range orig.Items {
			all = append(all, ReturnLine{ItemIndex: i, Quantity: it.Quantity})
		}
		return all, nil
	}
	seen := make(map[int]bool, len(requested))
	for _, l := range requested {
		if l.ItemIndex < 0 || l.ItemIndex >= len(orig.Items) {
			return nil, fmt.Errorf("%w: línea %d inexistente", domain.ErrInvalidInput, l.ItemIndex)
		}
		if seen[l.ItemIndex] {
			return nil, fmt.Errorf("%w: línea %d repetida", domain.ErrInvalidInput, l.ItemIndex)
		}
		seen[l.ItemIndex] = true
		if l.Quantity < 1 || l.Quantity > orig.Items[l.ItemIndex].Quantity {
			return nil, fmt.Errorf("%w: cantidad %d fuera de rango en línea %d", domain.ErrInvalidInput, l.Quantity, l.ItemIndex)
		}
	}
	return requested, nil
}
