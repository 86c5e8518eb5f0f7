package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

// índice único parcial de 002_documents.sql
const openShiftIndex = "shifts_one_open_per_register"

const shiftColumns = `id, register_number, cashier_name, status, opening_cash, closing_cash, counted_cash, discrepancy,
	cash_movements, sales_count, sales_total, cash_total, card_total, transfer_total, refunds_total, vat_collected,
	notes, opened_at, closed_at, updated_at`

type cashMovementJSON struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
}

func encodeCashMovements(list []entity.CashMovement) ([]byte, error) {
	out := make([]cashMovementJSON, 0, len(list))
	for _, m := range list {
		out = append(out, cashMovementJSON(m))
	}
	return json.Marshal(out)
}

// ShiftRepo turnos de caja sobre PostgreSQL.
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

// Create inserta el turno. Un segundo turno abierto en la misma caja viola el índice parcial
// y se traduce a domain.ErrShiftAlreadyOpen.
func (r *ShiftRepo) Create(ctx context.Context, sh *entity.Shift) error {
	movements, err := encodeCashMovements(sh.CashMovements)
	if err != nil {
		return fmt.Errorf("encode cash movements: %w", err)
	}
	query := `
		INSERT INTO shifts (` + shiftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err = r.q.Exec(ctx, query,
		sh.ID, sh.RegisterNumber, sh.CashierName, sh.Status, sh.OpeningCash, sh.ClosingCash, sh.CountedCash, sh.Discrepancy,
		movements, sh.SalesCount, sh.SalesTotal, sh.CashTotal, sh.CardTotal, sh.TransferTotal, sh.RefundsTotal, sh.VATCollected,
		sh.Notes, sh.OpenedAt, sh.ClosedAt, sh.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == openShiftIndex {
				return fmt.Errorf("%w: caja %d", domain.ErrShiftAlreadyOpen, sh.RegisterNumber)
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

// Update reescribe estado, acumuladores, movimientos de efectivo y datos de cierre.
func (r *ShiftRepo) Update(ctx context.Context, sh *entity.Shift) error {
	movements, err := encodeCashMovements(sh.CashMovements)
	if err != nil {
		return fmt.Errorf("encode cash movements: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE shifts SET
			status = $2, closing_cash = $3, counted_cash = $4, discrepancy = $5, cash_movements = $6,
			sales_count = $7, sales_total = $8, cash_total = $9, card_total = $10, transfer_total = $11,
			refunds_total = $12, vat_collected = $13, notes = $14, closed_at = $15, updated_at = $16
		WHERE id = $1`,
		sh.ID, sh.Status, sh.ClosingCash, sh.CountedCash, sh.Discrepancy, movements,
		sh.SalesCount, sh.SalesTotal, sh.CashTotal, sh.CardTotal, sh.TransferTotal,
		sh.RefundsTotal, sh.VATCollected, sh.Notes, sh.ClosedAt, sh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: turno %s", domain.ErrNotFound, sh.ID)
	}
	return nil
}

func scanShift(row pgx.Row) (*entity.Shift, error) {
	var (
		sh        entity.Shift
		movements []byte
	)
	err := row.Scan(
		&sh.ID, &sh.RegisterNumber, &sh.CashierName, &sh.Status, &sh.OpeningCash, &sh.ClosingCash, &sh.CountedCash, &sh.Discrepancy,
		&movements, &sh.SalesCount, &sh.SalesTotal, &sh.CashTotal, &sh.CardTotal, &sh.TransferTotal, &sh.RefundsTotal, &sh.VATCollected,
		&sh.Notes, &sh.OpenedAt, &sh.ClosedAt, &sh.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	var list []cashMovementJSON
	if err := json.Unmarshal(movements, &list); err != nil {
		return nil, fmt.Errorf("decode cash movements: %w", err)
	}
	for _, m := range list {
		sh.CashMovements = append(sh.CashMovements, entity.CashMovement(m))
	}
	return &sh, nil
}

func (r *ShiftRepo) getOne(ctx context.Context, query string, arg any) (*entity.Shift, error) {
	sh, err := scanShift(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return sh, nil
}

// GetByID obtiene un turno por ID.
func (r *ShiftRepo) GetByID(ctx context.Context, id string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
}

// GetForUpdate obtiene el turno bloqueando la fila.
func (r *ShiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1 FOR UPDATE`, id)
}

// GetOpenByRegister turno abierto de la caja, bloqueado.
func (r *ShiftRepo) GetOpenByRegister(ctx context.Context, registerNumber int) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE register_number = $1 AND status = 'open' FOR UPDATE`, registerNumber)
}

// List turnos, más recientes primero.
func (r *ShiftRepo) List(ctx context.Context, limit, offset int) ([]*entity.Shift, error) {
	limit, offset = pageArgs(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+shiftColumns+` FROM shifts ORDER BY opened_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		list = append(list, sh)
	}
	return list, rows.Err()
}
