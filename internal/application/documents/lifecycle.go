package documents

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/document"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// AddPayment registra un cobro posterior sobre un documento existente. Se acepta sobrepago.
// Sobre un documento acreditado el cobro suma a PaidTotal sin cambiar el estado.
func (e *Engine) AddPayment(ctx context.Context, in AddPaymentInput) (*entity.Document, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !pricing.IsMoney(in.Amount) {
		return nil, fmt.Errorf("%w: %s tiene más de 2 decimales", domain.ErrInvalidAmount, in.Amount)
	}
	if !validPaymentMethod(in.Method) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, in.Method)
	}

	var updated *entity.Document
	err := e.txRunner.Run(ctx, func(repos repository.Repos) error {
		doc, err := lockDocument(ctx, repos, in.DocumentID)
		if err != nil {
			return err
		}
		if !document.AcceptsPayments(doc.DocType) {
			return fmt.Errorf("%w: %s no admite cobros", domain.ErrInvalidInput, doc.DocType)
		}
		before := dto.NewDocumentResponse(doc)
		now := e.now().UTC()

		if in.ShiftID != "" {
			if err := e.shifts.RecordStandalonePayment(ctx, repos, in.ShiftID, in.Method, in.Amount); err != nil {
				return err
			}
		}

		doc.Payments = append(doc.Payments, entity.Payment{
			ID:        uuid.New().String(),
			Method:    in.Method,
			Amount:    in.Amount,
			Reference: in.Reference,
			ShiftID:   in.ShiftID,
			CreatedAt: now,
		})
		doc.PaidTotal = doc.PaidTotal.Add(in.Amount)
		// un documento acreditado cobra el saldo pendiente pero sigue acreditado
		if doc.Status != entity.DocStatusCredited {
			doc.Status = document.PaymentStatus(doc.PaidTotal, doc.Total)
		}
		doc.UpdatedAt = now
		if err := repos.Documents.Update(ctx, doc); err != nil {
			return err
		}

		if _, err := e.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:       entity.AuditPayment,
			EntityType:   entity.AuditEntityDocument,
			EntityID:     doc.ID,
			EntityNumber: doc.Number,
			Description:  fmt.Sprintf("cobro %s %s en %s", in.Amount.StringFixed(2), in.Method, doc.Number),
			Before:       before,
			After:        dto.NewDocumentResponse(doc),
			Metadata: map[string]any{
				"method":    in.Method,
				"amount":    in.Amount,
				"reference": in.Reference,
				"shift_id":  in.ShiftID,
			},
			UserID: in.UserID,
		}); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("number", updated.Number).
		Str("method", in.Method).
		Str("amount", in.Amount.StringFixed(2)).
		Str("status", updated.Status).
		Msg("cobro registrado")
	return updated, nil
}

// ConvertDocument crea un documento de TargetType a partir de un presupuesto. El presupuesto
// queda aceptado y enlazado al nuevo documento.
func (e *Engine) ConvertDocument(ctx context.Context, in ConvertInput) (*entity.Document, error) {
	if !document.ValidType(in.TargetType) || in.TargetType == entity.DocTypeQuote || in.TargetType == entity.DocTypeCreditNote {
		return nil, fmt.Errorf("%w: tipo destino %q", domain.ErrInvalidInput, in.TargetType)
	}

	var created *entity.Document
	err := e.txRunner.Run(ctx, func(repos repository.Repos) error {
		quote, err := lockDocument(ctx, repos, in.DocumentID)
		if err != nil {
			return err
		}
		if quote.DocType != entity.DocTypeQuote {
			return fmt.Errorf("%w: %s es %s", domain.ErrNotConvertible, quote.Number, quote.DocType)
		}
		if quote.Status == entity.DocStatusCancelled {
			return fmt.Errorf("%w: %s está cancelado", domain.ErrNotConvertible, quote.Number)
		}
		before := dto.NewDocumentResponse(quote)

		items := make([]ItemInput, 0, len(quote.Items))
		for _, it := range quote.Items {
			items = append(items, ItemInputFromItem(it))
		}
		customer := quote.Customer
		doc, err := e.createInTx(ctx, repos, CreateDocumentInput{
			DocType:             in.TargetType,
			CustomerID:          quote.Customer.ID,
			Items:               items,
			GlobalDiscountType:  quote.GlobalDiscountType,
			GlobalDiscountValue: quote.GlobalDiscountValue,
			Notes:               quote.Notes,
			SourceDocumentID:    quote.ID,
			ShiftID:             in.ShiftID,
			UserID:              in.UserID,
			customer:            &customer,
		})
		if err != nil {
			return err
		}

		after, err := repos.Documents.GetByID(ctx, quote.ID)
		if err != nil {
			return err
		}
		if _, err := e.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:       entity.AuditConvert,
			EntityType:   entity.AuditEntityDocument,
			EntityID:     quote.ID,
			EntityNumber: quote.Number,
			Description:  fmt.Sprintf("%s convertido en %s %s", quote.Number, doc.DocType, doc.Number),
			Before:       before,
			After:        dto.NewDocumentResponse(after),
			Metadata: map[string]any{
				"target_type":   doc.DocType,
				"target_id":     doc.ID,
				"target_number": doc.Number,
			},
			UserID: in.UserID,
		}); err != nil {
			return err
		}
		created = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("number", created.Number).
		Str("source_id", in.DocumentID).
		Msg("presupuesto convertido")
	return created, nil
}

// DuplicateDocument crea una copia del documento con el mismo tipo, sin cobros ni vínculo.
func (e *Engine) DuplicateDocument(ctx context.Context, in DuplicateInput) (*entity.Document, error) {
	var created *entity.Document
	err := e.txRunner.Run(ctx, func(repos repository.Repos) error {
		src, err := lockDocument(ctx, repos, in.DocumentID)
		if err != nil {
			return err
		}
		if src.DocType == entity.DocTypeCreditNote {
			return fmt.Errorf("%w: una nota de crédito no se duplica", domain.ErrInvalidInput)
		}

		notes := "Duplicated from " + src.Number
		if src.Notes != "" {
			notes += "\n" + src.Notes
		}
		items := make([]ItemInput, 0, len(src.Items))
		for _, it := range src.Items {
			items = append(items, ItemInputFromItem(it))
		}
		customer := src.Customer
		doc, err := e.createInTx(ctx, repos, CreateDocumentInput{
			DocType:             src.DocType,
			CustomerID:          src.Customer.ID,
			Items:               items,
			GlobalDiscountType:  src.GlobalDiscountType,
			GlobalDiscountValue: src.GlobalDiscountValue,
			Notes:               notes,
			ShiftID:             in.ShiftID,
			UserID:              in.UserID,
			customer:            &customer,
		})
		if err != nil {
			return err
		}

		if _, err := e.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:       entity.AuditDuplicate,
			EntityType:   entity.AuditEntityDocument,
			EntityID:     src.ID,
			EntityNumber: src.Number,
			Description:  fmt.Sprintf("%s duplicado como %s", src.Number, doc.Number),
			Metadata: map[string]any{
				"duplicate_id":     doc.ID,
				"duplicate_number": doc.Number,
			},
			UserID: in.UserID,
		}); err != nil {
			return err
		}
		created = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ChangeStatus cambia el estado manual de un presupuesto (enviar o cancelar).
func (e *Engine) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*entity.Document, error) {
	var updated *entity.Document
	err := e.txRunner.Run(ctx, func(repos repository.Repos) error {
		doc, err := lockDocument(ctx, repos, in.DocumentID)
		if err != nil {
			return err
		}
		if !document.CanTransition(doc.DocType, doc.Status, in.Status) {
			return fmt.Errorf("%w: %s %s → %s", domain.ErrInvalidTransition, doc.DocType, doc.Status, in.Status)
		}
		from := doc.Status
		doc.Status = in.Status
		doc.UpdatedAt = e.now().UTC()
		if err := repos.Documents.Update(ctx, doc); err != nil {
			return err
		}
		if _, err := e.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:       entity.AuditStatusChange,
			EntityType:   entity.AuditEntityDocument,
			EntityID:     doc.ID,
			EntityNumber: doc.Number,
			Description:  fmt.Sprintf("%s: %s → %s", doc.Number, from, in.Status),
			Before:       map[string]string{"status": from},
			After:        map[string]string{"status": in.Status},
			UserID:       in.UserID,
		}); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
