package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var (
	_ repository.DocumentRepository = (*DocumentRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

const documentColumns = `id, number, doc_type, status, customer, items, payments, subtotal, vat_total, total,
	paid_total, global_discount_type, global_discount_value, notes, source_document_id, related_documents,
	reference_invoice_id, reference_invoice_number, shift_id, stock_movement_ids, created_by, created_at, updated_at`

// Formas JSONB de las partes anidadas del documento.
type customerJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	VATNumber  string `json:"vat_number"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	PeppolID   string `json:"peppol_id"`
}

type itemJSON struct {
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

type paymentJSON struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	ShiftID   string          `json:"shift_id"`
	CreatedAt time.Time       `json:"created_at"`
}

func encodeDocumentParts(doc *entity.Document) (customer, items, payments []byte, err error) {
	customer, err = json.Marshal(customerJSON(doc.Customer))
	if err != nil {
		return nil, nil, nil, err
	}
	il := make([]itemJSON, 0, len(doc.Items))
	for _, it := range doc.Items {
		il = append(il, itemJSON(it))
	}
	if items, err = json.Marshal(il); err != nil {
		return nil, nil, nil, err
	}
	pl := make([]paymentJSON, 0, len(doc.Payments))
	for _, p := range doc.Payments {
		pl = append(pl, paymentJSON(p))
	}
	payments, err = json.Marshal(pl)
	return customer, items, payments, err
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var (
		d                         entity.Document
		customer, items, payments []byte
	)
	err := row.Scan(
		&d.ID, &d.Number, &d.DocType, &d.Status, &customer, &items, &payments, &d.Subtotal, &d.VATTotal, &d.Total,
		&d.PaidTotal, &d.GlobalDiscountType, &d.GlobalDiscountValue, &d.Notes, &d.SourceDocumentID, &d.RelatedDocuments,
		&d.ReferenceInvoiceID, &d.ReferenceInvoiceNumber, &d.ShiftID, &d.StockMovementIDs, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	var c customerJSON
	if err := json.Unmarshal(customer, &c); err != nil {
		return nil, fmt.Errorf("decode customer: %w", err)
	}
	d.Customer = entity.CustomerSnapshot(c)
	var il []itemJSON
	if err := json.Unmarshal(items, &il); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	for _, it := range il {
		d.Items = append(d.Items, entity.DocumentItem(it))
	}
	var pl []paymentJSON
	if err := json.Unmarshal(payments, &pl); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	d.Payments = make([]entity.Payment, 0, len(pl))
	for _, p := range pl {
		d.Payments = append(d.Payments, entity.Payment(p))
	}
	return &d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DocumentRepo documentos sobre PostgreSQL; líneas, pagos y cliente se guardan como JSONB.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste un documento nuevo.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	customer, items, payments, err := encodeDocumentParts(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	query := `
		INSERT INTO documents (` + documentColumns + `, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err = r.q.Exec(ctx, query,
		doc.ID, doc.Number, doc.DocType, doc.Status, customer, items, payments, doc.Subtotal, doc.VATTotal, doc.Total,
		doc.PaidTotal, doc.GlobalDiscountType, doc.GlobalDiscountValue, doc.Notes, doc.SourceDocumentID, nonNil(doc.RelatedDocuments),
		doc.ReferenceInvoiceID, doc.ReferenceInvoiceNumber, doc.ShiftID, nonNil(doc.StockMovementIDs), doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt,
		doc.Customer.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: documento %s", domain.ErrDuplicate, doc.Number)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Update reescribe las partes mutables del documento.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	_, _, payments, err := encodeDocumentParts(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE documents
		SET status = $2, payments = $3, paid_total = $4, related_documents = $5, updated_at = $6
		WHERE id = $1`,
		doc.ID, doc.Status, payments, doc.PaidTotal, nonNil(doc.RelatedDocuments), doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: documento %s", domain.ErrNotFound, doc.ID)
	}
	return nil
}

func (r *DocumentRepo) getOne(ctx context.Context, query, id string) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetByID obtiene un documento por ID.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// GetForUpdate obtiene el documento bloqueando la fila.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id)
}

// List documentos filtrados, más recientes primero.
func (r *DocumentRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.DocType != "" {
		add("doc_type = $%d", f.DocType)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CustomerID != "" {
		add("customer_id = $%d", f.CustomerID)
	}
	if f.ShiftID != "" {
		add("shift_id = $%d", f.ShiftID)
	}
	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return r.list(ctx, query, args...)
}

// ListByShift documentos del turno en orden de creación.
func (r *DocumentRepo) ListByShift(ctx context.Context, shiftID string) ([]*entity.Document, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM documents WHERE shift_id = $1 ORDER BY created_at, number`, shiftID)
}

func (r *DocumentRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Document, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

// SequenceRepo contador de numeración por (prefijo, día).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador en una sola sentencia; dos transacciones concurrentes nunca
// obtienen el mismo valor.
func (r *SequenceRepo) Next(ctx context.Context, prefix, day string) (int64, error) {
	var value int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (prefix, day, value) VALUES ($1, $2, 1)
		ON CONFLICT (prefix, day) DO UPDATE SET value = document_sequences.value + 1
		RETURNING value`,
		prefix, day,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s%s: %w", prefix, day, err)
	}
	return value, nil
}
