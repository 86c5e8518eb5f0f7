package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, sku, type, quantity, stock_before, stock_after, reference_type, reference_id,
	reason, created_by, created_at`

// StockMovementRepo libro de movimientos (solo inserción).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.SKU, m.Type, m.Quantity, m.StockBefore, m.StockAfter, m.ReferenceType, m.ReferenceID,
		m.Reason, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct movimientos del producto (todos si productID vacío), más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	limit, offset = pageArgs(limit, offset)
	return r.list(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE $1 = '' OR product_id = $1
		ORDER BY seq DESC LIMIT $2 OFFSET $3`,
		productID, limit, offset,
	)
}

// ListByReference movimientos generados por una referencia (ej. un documento), en orden.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY seq`,
		referenceType, referenceID,
	)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.StockMovement, error) {
		var m entity.StockMovement
		err := row.Scan(
			&m.ID, &m.ProductID, &m.SKU, &m.Type, &m.Quantity, &m.StockBefore, &m.StockAfter, &m.ReferenceType, &m.ReferenceID,
			&m.Reason, &m.CreatedBy, &m.CreatedAt,
		)
		return &m, err
	})
}
