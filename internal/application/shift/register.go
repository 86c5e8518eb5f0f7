// Package shift gestiona los turnos de caja: apertura, acumuladores de venta, movimientos
// de efectivo, cierre con arqueo e informe Z.
package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// OpeningCashReason motivo del movimiento sintético que registra el fondo inicial.
const OpeningCashReason = "Opening cash"

// Register caso de uso de turnos de caja.
type Register struct {
	txRunner  TxRunner
	shifts    repository.ShiftRepository
	documents repository.DocumentRepository
	trail     *audit.Trail
	log       *logger.Logger
	now       func() time.Time
}

// NewRegister construye el caso de uso.
func NewRegister(
	txRunner TxRunner,
	shifts repository.ShiftRepository,
	documents repository.DocumentRepository,
	trail *audit.Trail,
	log *logger.Logger,
) *Register {
	return &Register{
		txRunner:  txRunner,
		shifts:    shifts,
		documents: documents,
		trail:     trail,
		log:       log.Named("shift_register"),
		now:       time.Now,
	}
}

// OpenShiftInput entrada de OpenShift.
type OpenShiftInput struct {
	OpeningCash    decimal.Decimal
	CashierName    string
	RegisterNumber int
	UserID         string
}

// OpenShift abre un turno en la caja. Falla con domain.ErrShiftAlreadyOpen si ya hay uno abierto.
func (r *Register) OpenShift(ctx context.Context, in OpenShiftInput) (*entity.Shift, error) {
	if in.RegisterNumber <= 0 || in.CashierName == "" {
		return nil, fmt.Errorf("%w: caja y cajero son obligatorios", domain.ErrInvalidInput)
	}
	if in.OpeningCash.IsNegative() || !pricing.IsMoney(in.OpeningCash) {
		return nil, fmt.Errorf("%w: fondo inicial %s", domain.ErrInvalidAmount, in.OpeningCash)
	}

	now := r.now().UTC()
	sh := &entity.Shift{
		ID:             uuid.New().String(),
		RegisterNumber: in.RegisterNumber,
		CashierName:    in.CashierName,
		Status:         entity.ShiftOpen,
		OpeningCash:    in.OpeningCash,
		CashMovements: []entity.CashMovement{{
			ID:        uuid.New().String(),
			Type:      entity.CashIn,
			Amount:    in.OpeningCash,
			Reason:    OpeningCashReason,
			CreatedAt: now,
		}},
		OpenedAt:  now,
		UpdatedAt: now,
	}

	err := r.txRunner.Run(ctx, func(repos repository.Repos) error {
		existing, err := repos.Shifts.GetOpenByRegister(ctx, in.RegisterNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: caja %d", domain.ErrShiftAlreadyOpen, in.RegisterNumber)
		}
		// El índice único parcial cubre la carrera entre la lectura y el insert.
		if err := repos.Shifts.Create(ctx, sh); err != nil {
			return err
		}
		_, err = r.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:      entity.AuditShiftOpen,
			EntityType:  entity.AuditEntityShift,
			EntityID:    sh.ID,
			Description: fmt.Sprintf("Apertura caja %d por %s, fondo %s", sh.RegisterNumber, sh.CashierName, sh.OpeningCash.StringFixed(2)),
			After:       dto.NewShiftResponse(sh),
			UserID:      in.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("shift_id", sh.ID).Int("register", sh.RegisterNumber).Str("cashier", sh.CashierName).Msg("turno abierto")
	return sh, nil
}

// Current turno abierto de la caja o domain.ErrNoOpenShift.
func (r *Register) Current(ctx context.Context, registerNumber int) (*entity.Shift, error) {
	sh, err := r.shifts.GetOpenByRegister(ctx, registerNumber)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, fmt.Errorf("%w: caja %d", domain.ErrNoOpenShift, registerNumber)
	}
	return sh, nil
}

// Get devuelve un turno por ID.
func (r *Register) Get(ctx context.Context, id string) (*entity.Shift, error) {
	sh, err := r.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, domain.ErrNotFound
	}
	return sh, nil
}

// List turnos más recientes primero.
func (r *Register) List(ctx context.Context, limit, offset int) ([]*entity.Shift, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return r.shifts.List(ctx, limit, offset)
}

// lockOpen carga el turno bloqueado y exige que siga abierto.
func lockOpen(ctx context.Context, repos repository.Repos, shiftID string) (*entity.Shift, error) {
	sh, err := repos.Shifts.GetForUpdate(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, fmt.Errorf("%w: turno %s", domain.ErrNotFound, shiftID)
	}
	if !sh.IsOpen() {
		return nil, fmt.Errorf("%w: turno %s", domain.ErrShiftClosed, shiftID)
	}
	return sh, nil
}

// RecordSaleEffect suma una venta (factura o ticket) a los acumuladores del turno.
// Lo llama el motor de documentos dentro de su transacción.
func (r *Register) RecordSaleEffect(ctx context.Context, repos repository.Repos, shiftID string, total, vatTotal decimal.Decimal, paymentsByMethod map[string]decimal.Decimal) error {
	sh, err := lockOpen(ctx, repos, shiftID)
	if err != nil {
		return err
	}
	sh.SalesCount++
	sh.SalesTotal = sh.SalesTotal.Add(total)
	sh.VATCollected = sh.VATCollected.Add(vatTotal)
	for method, amount := range paymentsByMethod {
		sh.AddToMethod(method, amount)
	}
	sh.UpdatedAt = r.now().UTC()
	return repos.Shifts.Update(ctx, sh)
}

// RecordStandalonePayment suma un cobro posterior a la creación del documento; solo toca
// el acumulador del medio de pago.
func (r *Register) RecordStandalonePayment(ctx context.Context, repos repository.Repos, shiftID, method string, amount decimal.Decimal) error {
	sh, err := lockOpen(ctx, repos, shiftID)
	if err != nil {
		return err
	}
	sh.AddToMethod(method, amount)
	sh.UpdatedAt = r.now().UTC()
	return repos.Shifts.Update(ctx, sh)
}

// RecordRefund suma amount (positivo) a refunds_total y, si hay medio de reembolso,
// lo descuenta de su acumulador.
func (r *Register) RecordRefund(ctx context.Context, repos repository.Repos, shiftID string, amount decimal.Decimal, method string) error {
	sh, err := lockOpen(ctx, repos, shiftID)
	if err != nil {
		return err
	}
	sh.RefundsTotal = sh.RefundsTotal.Add(amount)
	if method != "" {
		sh.AddToMethod(method, amount.Neg())
	}
	sh.UpdatedAt = r.now().UTC()
	return repos.Shifts.Update(ctx, sh)
}

// CashMovementInput entrada de AddCashMovement.
type CashMovementInput struct {
	RegisterNumber int
	Type           string
	Amount         decimal.Decimal
	Reason         string
	UserID         string
}

// AddCashMovement registra una entrada o salida manual de efectivo en el turno abierto.
// No toca los acumuladores de venta; se concilia al cierre.
func (r *Register) AddCashMovement(ctx context.Context, in CashMovementInput) (*entity.Shift, error) {
	if in.Type != entity.CashIn && in.Type != entity.CashOut {
		return nil, fmt.Errorf("%w: tipo de movimiento de caja %q", domain.ErrInvalidInput, in.Type)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el importe debe ser positivo", domain.ErrInvalidAmount)
	}
	if !pricing.IsMoney(in.Amount) {
		return nil, fmt.Errorf("%w: %s tiene más de 2 decimales", domain.ErrInvalidAmount, in.Amount)
	}

	var sh *entity.Shift
	err := r.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		sh, err = repos.Shifts.GetOpenByRegister(ctx, in.RegisterNumber)
		if err != nil {
			return err
		}
		if sh == nil {
			return fmt.Errorf("%w: caja %d", domain.ErrNoOpenShift, in.RegisterNumber)
		}
		now := r.now().UTC()
		mov := entity.CashMovement{
			ID:        uuid.New().String(),
			Type:      in.Type,
			Amount:    in.Amount,
			Reason:    in.Reason,
			CreatedAt: now,
		}
		sh.CashMovements = append(sh.CashMovements, mov)
		sh.UpdatedAt = now
		if err := repos.Shifts.Update(ctx, sh); err != nil {
			return err
		}
		_, err = r.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:      entity.AuditCashMovement,
			EntityType:  entity.AuditEntityShift,
			EntityID:    sh.ID,
			Description: fmt.Sprintf("%s %s: %s", in.Type, in.Amount.StringFixed(2), in.Reason),
			Metadata:    map[string]string{"movement_id": mov.ID, "type": mov.Type, "amount": mov.Amount.String()},
			UserID:      in.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// ExpectedCash efectivo esperado en el cajón:
// fondo + efectivo cobrado - reembolsos + entradas manuales - salidas.
// El movimiento sintético de apertura ya es el fondo y no se vuelve a sumar.
func ExpectedCash(sh *entity.Shift) decimal.Decimal {
	expected := sh.OpeningCash.Add(sh.CashTotal).Sub(sh.RefundsTotal)
	for i, m := range sh.CashMovements {
		if i == 0 && m.Type == entity.CashIn && m.Reason == OpeningCashReason {
			continue
		}
		switch m.Type {
		case entity.CashIn:
			expected = expected.Add(m.Amount)
		case entity.CashOut:
			expected = expected.Sub(m.Amount)
		}
	}
	return expected
}

// CloseShiftInput entrada de CloseShift.
type CloseShiftInput struct {
	RegisterNumber int
	CountedCash    decimal.Decimal
	Notes          string
	UserID         string
}

// CloseShift cierra el turno abierto de la caja: congela el efectivo esperado y la
// diferencia con lo contado. Un turno cerrado ya no admite cambios.
func (r *Register) CloseShift(ctx context.Context, in CloseShiftInput) (*entity.Shift, error) {
	if in.CountedCash.IsNegative() || !pricing.IsMoney(in.CountedCash) {
		return nil, fmt.Errorf("%w: efectivo contado %s", domain.ErrInvalidAmount, in.CountedCash)
	}

	var sh *entity.Shift
	err := r.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		sh, err = repos.Shifts.GetOpenByRegister(ctx, in.RegisterNumber)
		if err != nil {
			return err
		}
		if sh == nil {
			return fmt.Errorf("%w: caja %d", domain.ErrNoOpenShift, in.RegisterNumber)
		}
		before := dto.NewShiftResponse(sh)

		now := r.now().UTC()
		expected := ExpectedCash(sh)
		sh.ClosingCash = expected
		sh.CountedCash = in.CountedCash
		sh.Discrepancy = in.CountedCash.Sub(expected)
		sh.Status = entity.ShiftClosed
		sh.Notes = in.Notes
		sh.ClosedAt = &now
		sh.UpdatedAt = now
		if err := repos.Shifts.Update(ctx, sh); err != nil {
			return err
		}
		_, err = r.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:      entity.AuditShiftClose,
			EntityType:  entity.AuditEntityShift,
			EntityID:    sh.ID,
			Description: fmt.Sprintf("Cierre caja %d: esperado %s, contado %s, diferencia %s", sh.RegisterNumber, expected.StringFixed(2), in.CountedCash.StringFixed(2), sh.Discrepancy.StringFixed(2)),
			Before:      before,
			After:       dto.NewShiftResponse(sh),
			UserID:      in.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ev := r.log.Info
	if !sh.Discrepancy.IsZero() {
		ev = r.log.Warn
	}
	ev().Str("shift_id", sh.ID).
		Int("register", sh.RegisterNumber).
		Str("expected", sh.ClosingCash.StringFixed(2)).
		Str("counted", sh.CountedCash.StringFixed(2)).
		Str("discrepancy", sh.Discrepancy.StringFixed(2)).
		Msg("turno cerrado")
	return sh, nil
}
