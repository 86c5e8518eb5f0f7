package documents

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Get devuelve el documento o domain.ErrNotFound.
func (e *Engine) Get(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := e.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, id)
	}
	return doc, nil
}

// List documentos filtrados, más recientes primero.
func (e *Engine) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return e.documents.List(ctx, filter)
}

// AuditHistory entradas de auditoría del documento, de la más antigua a la más reciente.
func (e *Engine) AuditHistory(ctx context.Context, id string) ([]*entity.AuditLog, error) {
	if _, err := e.Get(ctx, id); err != nil {
		return nil, err
	}
	return e.trail.List(ctx, repository.AuditFilter{
		EntityType: entity.AuditEntityDocument,
		EntityID:   id,
		Limit:      500,
	})
}
