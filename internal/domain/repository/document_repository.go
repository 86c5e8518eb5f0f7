package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// DocumentFilter filtros de listado; los campos vacíos no filtran.
type DocumentFilter struct {
	DocType    string
	Status     string
	CustomerID string
	ShiftID    string
	Limit      int
	Offset     int
}

// DocumentRepository define el puerto de persistencia para Document.
// No hay Delete: los documentos son el registro financiero permanente.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	// Update reescribe las partes mutables: estado, pagos, PaidTotal, vínculos y UpdatedAt.
	Update(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	// List documentos más recientes primero.
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, error)
	// ListByShift documentos atribuidos al turno, en orden de creación.
	ListByShift(ctx context.Context, shiftID string) ([]*entity.Document, error)
}

// SequenceRepository contador atómico por (prefijo, día UTC YYMMDD).
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor (el primero del día es 1).
	Next(ctx context.Context, prefix, day string) (int64, error)
}
