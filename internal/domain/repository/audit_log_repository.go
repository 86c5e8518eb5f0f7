package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// AuditFilter filtros de consulta de auditoría; los campos vacíos no filtran.
type AuditFilter struct {
	EntityType string
	EntityID   string
	Action     string
	Limit      int
	Offset     int
}

// AuditLogRepository almacén append-only; List devuelve en orden de inserción.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditLog, error)
}
