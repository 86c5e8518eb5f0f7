package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ShiftRepository define el puerto de persistencia para Shift.
// Create devuelve domain.ErrShiftAlreadyOpen si ya hay un turno abierto en la caja.
type ShiftRepository interface {
	Create(ctx context.Context, shift *entity.Shift) error
	Update(ctx context.Context, shift *entity.Shift) error
	GetByID(ctx context.Context, id string) (*entity.Shift, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Shift, error)
	// GetOpenByRegister turno abierto de la caja (bloqueado para update en transacción), o nil.
	GetOpenByRegister(ctx context.Context, registerNumber int) (*entity.Shift, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Shift, error)
}
