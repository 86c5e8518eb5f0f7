// Package documents es el motor del ciclo de vida de los documentos comerciales: creación,
// cobros, conversión de presupuestos, duplicados, devoluciones (notas de crédito) y estados.
package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/document"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ReferenceDocument tipo de referencia de los movimientos de stock generados por documentos.
const ReferenceDocument = "document"

// Engine caso de uso de documentos.
type Engine struct {
	txRunner  DocumentTxRunner
	documents repository.DocumentRepository
	stock     StockRecorder
	shifts    ShiftEffects
	trail     *audit.Trail
	log       *logger.Logger
	now       func() time.Time
}

// NewEngine construye el motor de documentos.
func NewEngine(
	txRunner DocumentTxRunner,
	documents repository.DocumentRepository,
	stock StockRecorder,
	shifts ShiftEffects,
	trail *audit.Trail,
	log *logger.Logger,
) *Engine {
	return &Engine{
		txRunner:  txRunner,
		documents: documents,
		stock:     stock,
		shifts:    shifts,
		trail:     trail,
		log:       log.Named("documents"),
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (numeración por día en tests).
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// CreateDocument valida, calcula, numera y guarda el documento con sus efectos (stock, turno,
// vínculo con el origen y auditoría) en una única transacción.
func (e *Engine) CreateDocument(ctx context.Context, in CreateDocumentInput) (*entity.Document, error) {
	if in.DocType == entity.DocTypeCreditNote {
		return nil, fmt.Errorf("%w: las notas de crédito se crean con una devolución", domain.ErrInvalidInput)
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	var created *entity.Document
	err := e.txRunner.Run(ctx, func(repos repository.Repos) error {
		doc, err := e.createInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		created = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("document_id", created.ID).
		Str("number", created.Number).
		Str("doc_type", created.DocType).
		Str("total", created.Total.StringFixed(pricing.MoneyPlaces)).
		Msg("documento creado")
	return created, nil
}

func validateCreate(in CreateDocumentInput) error {
	if !document.ValidType(in.DocType) {
		return fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, in.DocType)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: el documento necesita al menos una línea", domain.ErrInvalidInput)
	}
	for i, it := range in.Items {
		if it.Quantity == 0 {
			return fmt.Errorf("%w: línea %d con cantidad cero", domain.ErrInvalidInput, i)
		}
		if !pricing.ValidDiscountType(it.DiscountType) {
			return fmt.Errorf("%w: línea %d con descuento %q", domain.ErrInvalidInput, i, it.DiscountType)
		}
	}
	if !pricing.ValidDiscountType(in.GlobalDiscountType) {
		return fmt.Errorf("%w: descuento global %q", domain.ErrInvalidInput, in.GlobalDiscountType)
	}
	if len(in.Payments) > 0 && !document.AcceptsPayments(in.DocType) {
		return fmt.Errorf("%w: %s no admite cobros", domain.ErrInvalidInput, in.DocType)
	}
	for i, p := range in.Payments {
		if !p.Amount.IsPositive() || !pricing.IsMoney(p.Amount) {
			return fmt.Errorf("%w: cobro %d", domain.ErrInvalidAmount, i)
		}
		if !validPaymentMethod(p.Method) {
			return fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, p.Method)
		}
	}
	return nil
}

// createInTx hace todo el trabajo de CreateDocument con los repos de una transacción ya abierta.
// La usan también la conversión y el duplicado.
func (e *Engine) createInTx(ctx context.Context, repos repository.Repos, in CreateDocumentInput) (*entity.Document, error) {
	now := e.now().UTC()

	// ── 1. Cliente, origen y turno ──
	var customer entity.CustomerSnapshot
	switch {
	case in.customer != nil:
		customer = *in.customer
	case in.CustomerID != "":
		c, err := repos.Customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.CustomerID)
		}
		customer = c.Snapshot()
	}

	// Orden de bloqueo: documentos antes que turno.
	var source *entity.Document
	if in.SourceDocumentID != "" {
		src, err := repos.Documents.GetForUpdate(ctx, in.SourceDocumentID)
		if err != nil {
			return nil, err
		}
		if src == nil {
			return nil, fmt.Errorf("%w: documento origen %s", domain.ErrNotFound, in.SourceDocumentID)
		}
		source = src
	}

	if in.ShiftID != "" {
		sh, err := repos.Shifts.GetForUpdate(ctx, in.ShiftID)
		if err != nil {
			return nil, err
		}
		if sh == nil {
			return nil, fmt.Errorf("%w: turno %s", domain.ErrNotFound, in.ShiftID)
		}
		if !sh.IsOpen() {
			return nil, fmt.Errorf("%w: turno %s", domain.ErrShiftClosed, in.ShiftID)
		}
	}

	// ── 2. Líneas e importes ──
	movesStock := document.MovesStockOnCreate(in.DocType) != ""
	items := make([]entity.DocumentItem, 0, len(in.Items))
	for i, it := range in.Items {
		if movesStock && it.Quantity < 0 {
			return nil, fmt.Errorf("%w: línea %d con cantidad negativa en %s", domain.ErrInvalidInput, i, in.DocType)
		}
		item := it.toItem()
		if item.ProductID != "" && (item.SKU == "" || item.Name == "") {
			p, err := repos.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if p != nil {
				if item.SKU == "" {
					item.SKU = p.SKU
				}
				if item.Name == "" {
					item.Name = p.Name
				}
			}
		}
		items = append(items, item)
	}
	globalType := in.GlobalDiscountType
	if globalType == "" {
		globalType = entity.DiscountNone
	}
	totals := pricing.ComputeTotals(items, globalType, in.GlobalDiscountValue)

	payments := make([]entity.Payment, 0, len(in.Payments))
	paid := decimal.Zero
	for _, p := range in.Payments {
		payments = append(payments, entity.Payment{
			ID:        uuid.New().String(),
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			ShiftID:   in.ShiftID,
			CreatedAt: now,
		})
		paid = paid.Add(p.Amount)
	}

	// ── 3. Número y estado ──
	number, err := nextNumber(ctx, repos, in.DocType, now)
	if err != nil {
		return nil, err
	}
	doc := &entity.Document{
		ID:                  uuid.New().String(),
		Number:              number,
		DocType:             in.DocType,
		Status:              document.InitialStatus(in.DocType, paid, totals.Total),
		Customer:            customer,
		Items:               totals.Items,
		Payments:            payments,
		Subtotal:            totals.Subtotal,
		VATTotal:            totals.VATTotal,
		Total:               totals.Total,
		PaidTotal:           paid,
		GlobalDiscountType:  globalType,
		GlobalDiscountValue: in.GlobalDiscountValue,
		Notes:               in.Notes,
		SourceDocumentID:    in.SourceDocumentID,
		RelatedDocuments:    []string{},
		ShiftID:             in.ShiftID,
		StockMovementIDs:    []string{},
		CreatedBy:           in.UserID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// ── 4. Stock ──
	var skipped []StockSkip
	if movementType := document.MovesStockOnCreate(doc.DocType); movementType != "" {
		skipped, err = e.recordItemMovements(ctx, repos, doc, movementType, doc.Items, in.UserID)
		if err != nil {
			return nil, err
		}
	}

	if err := repos.Documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	// ── 5. Turno ──
	if doc.ShiftID != "" {
		if document.IsSale(doc.DocType) {
			byMethod := make(map[string]decimal.Decimal)
			for _, p := range doc.Payments {
				byMethod[p.Method] = byMethod[p.Method].Add(p.Amount)
			}
			if err := e.shifts.RecordSaleEffect(ctx, repos, doc.ShiftID, doc.Total, doc.VATTotal, byMethod); err != nil {
				return nil, err
			}
		} else {
			for _, p := range doc.Payments {
				if err := e.shifts.RecordStandalonePayment(ctx, repos, doc.ShiftID, p.Method, p.Amount); err != nil {
					return nil, err
				}
			}
		}
	}

	// ── 6. Vínculo con el origen ──
	if source != nil {
		source.RelatedDocuments = append(source.RelatedDocuments, doc.ID)
		if source.DocType == entity.DocTypeQuote {
			source.Status = entity.DocStatusAccepted
		}
		source.UpdatedAt = now
		if err := repos.Documents.Update(ctx, source); err != nil {
			return nil, err
		}
	}

	// ── 7. Auditoría ──
	meta := map[string]any{}
	if len(skipped) > 0 {
		meta["stock_skipped"] = skipped
	}
	if source != nil {
		meta["source_document_id"] = source.ID
		meta["source_number"] = source.Number
	}
	var metadata any
	if len(meta) > 0 {
		metadata = meta
	}
	if _, err := e.trail.Record(ctx, repos.Audit, audit.Entry{
		Action:       entity.AuditCreate,
		EntityType:   entity.AuditEntityDocument,
		EntityID:     doc.ID,
		EntityNumber: doc.Number,
		Description:  fmt.Sprintf("%s %s creado", doc.DocType, doc.Number),
		After:        dto.NewDocumentResponse(doc),
		Metadata:     metadata,
		UserID:       in.UserID,
	}); err != nil {
		return nil, err
	}
	return doc, nil
}

func nextNumber(ctx context.Context, repos repository.Repos, docType string, now time.Time) (string, error) {
	prefix, ok := document.Prefix(docType)
	if !ok {
		return "", fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, docType)
	}
	seq, err := repos.Sequences.Next(ctx, prefix, document.DayKey(now))
	if err != nil {
		return "", fmt.Errorf("numeración %s: %w", prefix, err)
	}
	return document.FormatNumber(prefix, now, seq), nil
}

// recordItemMovements registra un movimiento por línea con producto. Un producto que ya no
// existe no aborta el documento: la línea se devuelve como omitida.
func (e *Engine) recordItemMovements(ctx context.Context, repos repository.Repos, doc *entity.Document, movementType string, items []entity.DocumentItem, userID string) ([]StockSkip, error) {
	var skipped []StockSkip
	for i, it := range items {
		if it.ProductID == "" {
			continue
		}
		mov, err := e.stock.RecordMovement(ctx, repos, inventory.MovementInput{
			ProductID:     it.ProductID,
			SKU:           it.SKU,
			Type:          movementType,
			Quantity:      it.Quantity,
			ReferenceType: ReferenceDocument,
			ReferenceID:   doc.ID,
			Reason:        doc.Number,
			UserID:        userID,
		})
		if errors.Is(err, domain.ErrProductNotFound) {
			e.log.Warn().
				Str("document", doc.Number).
				Str("product_id", it.ProductID).
				Int("item_index", i).
				Msg("producto inexistente, movimiento de stock omitido")
			skipped = append(skipped, StockSkip{
				ItemIndex: i,
				ProductID: it.ProductID,
				SKU:       it.SKU,
				Reason:    "product not found",
			})
			continue
		}
		if err != nil {
			return nil, err
		}
		doc.StockMovementIDs = append(doc.StockMovementIDs, mov.ID)
	}
	return skipped, nil
}

// lockDocument carga el documento bloqueado; NotFound si no existe.
func lockDocument(ctx context.Context, repos repository.Repos, id string) (*entity.Document, error) {
	doc, err := repos.Documents.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, id)
	}
	return doc, nil
}
