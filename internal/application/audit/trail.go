// Package audit registra la traza append-only de las operaciones del punto de venta.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Entry datos de una entrada de auditoría. Before, After y Metadata se serializan a JSON.
type Entry struct {
	Action       string
	EntityType   string
	EntityID     string
	EntityNumber string
	Description  string
	Before       any
	After        any
	Metadata     any
	UserID       string
}

// Trail escribe y consulta la auditoría.
type Trail struct {
	repo repository.AuditLogRepository
	now  func() time.Time
}

// NewTrail construye la traza sobre el repositorio de lectura (fuera de transacción).
func NewTrail(repo repository.AuditLogRepository) *Trail {
	return &Trail{repo: repo, now: time.Now}
}

// Record añade la entrada usando repo (atado a la transacción del caller). Con repo nil usa el propio.
func (t *Trail) Record(ctx context.Context, repo repository.AuditLogRepository, e Entry) (*entity.AuditLog, error) {
	if repo == nil {
		repo = t.repo
	}
	before, err := marshal(e.Before)
	if err != nil {
		return nil, fmt.Errorf("audit before: %w", err)
	}
	after, err := marshal(e.After)
	if err != nil {
		return nil, fmt.Errorf("audit after: %w", err)
	}
	meta, err := marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("audit metadata: %w", err)
	}
	log := &entity.AuditLog{
		ID:           uuid.New().String(),
		Action:       e.Action,
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		EntityNumber: e.EntityNumber,
		Description:  e.Description,
		Before:       before,
		After:        after,
		Metadata:     meta,
		UserID:       e.UserID,
		CreatedAt:    t.now().UTC(),
	}
	if err := repo.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// List entradas en orden de inserción.
func (t *Trail) List(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditLog, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return t.repo.List(ctx, filter)
}

func marshal(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
