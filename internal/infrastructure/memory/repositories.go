package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var (
	_ repository.DocumentRepository      = (*documentRepo)(nil)
	_ repository.SequenceRepository      = (*sequenceRepo)(nil)
	_ repository.ProductRepository       = (*productRepo)(nil)
	_ repository.CustomerRepository      = (*customerRepo)(nil)
	_ repository.CategoryRepository      = (*categoryRepo)(nil)
	_ repository.UserRepository          = (*userRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
	_ repository.ShiftRepository         = (*shiftRepo)(nil)
	_ repository.AuditLogRepository      = (*auditRepo)(nil)
)

// ── Documentos ────────────────────────────────────────────────────────────────

type documentRepo struct{ db *db }

func (r *documentRepo) Create(_ context.Context, doc *entity.Document) error {
	defer r.db.lock()()
	if _, ok := r.db.data.documents[doc.ID]; ok {
		return domain.ErrDuplicate
	}
	r.db.data.documents[doc.ID] = doc.Clone()
	r.db.data.docOrder = append(r.db.data.docOrder, doc.ID)
	return nil
}

func (r *documentRepo) Update(_ context.Context, doc *entity.Document) error {
	defer r.db.lock()()
	if _, ok := r.db.data.documents[doc.ID]; !ok {
		return domain.ErrNotFound
	}
	r.db.data.documents[doc.ID] = doc.Clone()
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	doc, ok := r.db.data.documents[id]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

func (r *documentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

func (r *documentRepo) List(_ context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*entity.Document, 0)
	for i := len(r.db.data.docOrder) - 1; i >= 0; i-- {
		doc := r.db.data.documents[r.db.data.docOrder[i]]
		if f.DocType != "" && doc.DocType != f.DocType {
			continue
		}
		if f.Status != "" && doc.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && doc.Customer.ID != f.CustomerID {
			continue
		}
		if f.ShiftID != "" && doc.ShiftID != f.ShiftID {
			continue
		}
		out = append(out, doc.Clone())
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *documentRepo) ListByShift(_ context.Context, shiftID string) ([]*entity.Document, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*entity.Document, 0)
	for _, id := range r.db.data.docOrder {
		doc := r.db.data.documents[id]
		if doc.ShiftID == shiftID {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

type sequenceRepo struct{ db *db }

func (r *sequenceRepo) Next(_ context.Context, prefix, day string) (int64, error) {
	defer r.db.lock()()
	key := prefix + day
	r.db.data.sequences[key]++
	return r.db.data.sequences[key], nil
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

type productRepo struct{ db *db }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.db.lock()()
	for _, existing := range r.db.data.products {
		if existing.ID == p.ID || strings.EqualFold(existing.SKU, p.SKU) {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.db.data.products[p.ID] = &cp
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.data.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.data.products {
		if strings.EqualFold(p.SKU, sku) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) UpdateStock(_ context.Context, id string, stockQty int) error {
	defer r.db.lock()()
	p, ok := r.db.data.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.StockQty = stockQty
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.db.data.products))
	for _, p := range r.db.data.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}

func (r *productRepo) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*entity.Product, 0)
	for _, p := range r.db.data.products {
		if p.IsLowStock() {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQty != out[j].StockQty {
			return out[i].StockQty < out[j].StockQty
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

type customerRepo struct{ db *db }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	defer r.db.lock()()
	if _, ok := r.db.data.customers[c.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *c
	r.db.data.customers[c.ID] = &cp
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.data.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *customerRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Customer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]*entity.Customer, 0)
	for _, c := range r.db.data.customers {
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Email), q) &&
			!strings.Contains(strings.ToLower(c.VATNumber), q) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

type categoryRepo struct{ db *db }

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	defer r.db.lock()()
	for _, existing := range r.db.data.categories {
		if existing.ID == c.ID {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.db.data.categories = append(r.db.data.categories, &cp)
	return nil
}

func (r *categoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return append([]*entity.Category(nil), r.db.data.categories...), nil
}

type userRepo struct{ db *db }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	defer r.db.lock()()
	for _, existing := range r.db.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.db.data.users[u.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.data.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.data.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ── Stock, turnos y auditoría ─────────────────────────────────────────────────

type movementRepo struct{ db *db }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.db.lock()()
	cp := *m
	r.db.data.movements = append(r.db.data.movements, &cp)
	return nil
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	for i := len(r.db.data.movements) - 1; i >= 0; i-- {
		m := r.db.data.movements[i]
		if productID != "" && m.ProductID != productID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (r *movementRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	for _, m := range r.db.data.movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type shiftRepo struct{ db *db }

// Create aplica la restricción de un único turno abierto por caja (equivalente al índice
// único parcial de PostgreSQL).
func (r *shiftRepo) Create(_ context.Context, sh *entity.Shift) error {
	defer r.db.lock()()
	if sh.IsOpen() {
		if _, busy := r.db.data.openShiftBy[sh.RegisterNumber]; busy {
			return domain.ErrShiftAlreadyOpen
		}
		r.db.data.openShiftBy[sh.RegisterNumber] = sh.ID
	}
	r.db.data.shifts[sh.ID] = sh.Clone()
	r.db.data.shiftOrder = append(r.db.data.shiftOrder, sh.ID)
	return nil
}

func (r *shiftRepo) Update(_ context.Context, sh *entity.Shift) error {
	defer r.db.lock()()
	if _, ok := r.db.data.shifts[sh.ID]; !ok {
		return domain.ErrNotFound
	}
	if !sh.IsOpen() && r.db.data.openShiftBy[sh.RegisterNumber] == sh.ID {
		delete(r.db.data.openShiftBy, sh.RegisterNumber)
	}
	r.db.data.shifts[sh.ID] = sh.Clone()
	return nil
}

func (r *shiftRepo) GetByID(_ context.Context, id string) (*entity.Shift, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	sh, ok := r.db.data.shifts[id]
	if !ok {
		return nil, nil
	}
	return sh.Clone(), nil
}

func (r *shiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shift, error) {
	return r.GetByID(ctx, id)
}

func (r *shiftRepo) GetOpenByRegister(_ context.Context, registerNumber int) (*entity.Shift, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	id, ok := r.db.data.openShiftBy[registerNumber]
	if !ok {
		return nil, nil
	}
	return r.db.data.shifts[id].Clone(), nil
}

func (r *shiftRepo) List(_ context.Context, limit, offset int) ([]*entity.Shift, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*entity.Shift, 0, len(r.db.data.shiftOrder))
	for i := len(r.db.data.shiftOrder) - 1; i >= 0; i-- {
		out = append(out, r.db.data.shifts[r.db.data.shiftOrder[i]].Clone())
	}
	return page(out, limit, offset), nil
}

type auditRepo struct{ db *db }

func (r *auditRepo) Create(_ context.Context, l *entity.AuditLog) error {
	defer r.db.lock()()
	cp := *l
	r.db.data.auditLogs = append(r.db.data.auditLogs, &cp)
	return nil
}

func (r *auditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*entity.AuditLog, 0)
	for _, l := range r.db.data.auditLogs {
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && l.EntityID != f.EntityID {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return page(out, f.Limit, f.Offset), nil
}
