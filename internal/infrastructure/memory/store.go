// Package memory implementa los repositorios en memoria. Se usa con STORE_DRIVER=memory
// (demo sin base de datos) y en los tests de casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

type state struct {
	products    map[string]*entity.Product
	customers   map[string]*entity.Customer
	categories  []*entity.Category
	users       map[string]*entity.User
	documents   map[string]*entity.Document
	docOrder    []string
	movements   []*entity.StockMovement
	shifts      map[string]*entity.Shift
	shiftOrder  []string
	openShiftBy map[int]string
	auditLogs   []*entity.AuditLog
	sequences   map[string]int64
}

func newState() *state {
	return &state{
		products:    make(map[string]*entity.Product),
		customers:   make(map[string]*entity.Customer),
		users:       make(map[string]*entity.User),
		documents:   make(map[string]*entity.Document),
		shifts:      make(map[string]*entity.Shift),
		openShiftBy: make(map[int]string),
		sequences:   make(map[string]int64),
	}
}

// clone copia el estado para la copia de trabajo de una transacción.
// Las entidades se guardan siempre como copias propias, así que basta con copiar punteros
// de las que nunca se mutan en sitio (movimientos, auditoría, categorías, usuarios).
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.customers {
		cu := *v
		c.customers[k] = &cu
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.documents {
		c.documents[k] = v.Clone()
	}
	for k, v := range s.shifts {
		c.shifts[k] = v.Clone()
	}
	for k, v := range s.openShiftBy {
		c.openShiftBy[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.categories = append(c.categories, s.categories...)
	c.docOrder = append(c.docOrder, s.docOrder...)
	c.movements = append(c.movements, s.movements...)
	c.shiftOrder = append(c.shiftOrder, s.shiftOrder...)
	c.auditLogs = append(c.auditLogs, s.auditLogs...)
	return c
}

// db estado más el cerrojo que lo protege. El estado confirmado del Store y la copia de
// trabajo de cada transacción son dos db distintos.
type db struct {
	mu   sync.RWMutex
	data *state
	gate *sync.Mutex // nil en la copia de trabajo de una transacción
}

// lock toma el cerrojo de escritura. Fuera de una transacción espera antes a que termine
// la que esté en curso.
func (d *db) lock() func() {
	if d.gate != nil {
		d.gate.Lock()
	}
	d.mu.Lock()
	return func() {
		d.mu.Unlock()
		if d.gate != nil {
			d.gate.Unlock()
		}
	}
}

// Store almacén en memoria seguro para uso concurrente.
type Store struct {
	txMu      sync.Mutex // serializa transacciones y escrituras directas
	committed *db
}

// New crea un almacén vacío.
func New() *Store {
	s := &Store{}
	s.committed = &db{data: newState(), gate: &s.txMu}
	return s
}

// Run ejecuta fn sobre una copia de trabajo del estado y la confirma solo si fn termina
// sin error. Las lecturas fuera de la transacción ven siempre el estado confirmado.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.committed.mu.RLock()
	work := &db{data: s.committed.data.clone()}
	s.committed.mu.RUnlock()

	if err := fn(reposOn(work)); err != nil {
		return err
	}
	s.committed.mu.Lock()
	s.committed.data = work.data
	s.committed.mu.Unlock()
	return nil
}

// Repos devuelve los repositorios sobre el estado confirmado, fuera de transacción.
func (s *Store) Repos() repository.Repos {
	return reposOn(s.committed)
}

func reposOn(d *db) repository.Repos {
	return repository.Repos{
		Documents: &documentRepo{db: d},
		Sequences: &sequenceRepo{db: d},
		Products:  &productRepo{db: d},
		Customers: &customerRepo{db: d},
		Movements: &movementRepo{db: d},
		Shifts:    &shiftRepo{db: d},
		Audit:     &auditRepo{db: d},
	}
}

// Documents repositorio de documentos fuera de transacción.
func (s *Store) Documents() repository.DocumentRepository {
	return &documentRepo{db: s.committed}
}

// Sequences contadores de numeración.
func (s *Store) Sequences() repository.SequenceRepository {
	return &sequenceRepo{db: s.committed}
}

// Products catálogo de productos.
func (s *Store) Products() repository.ProductRepository {
	return &productRepo{db: s.committed}
}

// Customers clientes.
func (s *Store) Customers() repository.CustomerRepository {
	return &customerRepo{db: s.committed}
}

// Categories familias de productos.
func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepo{db: s.committed}
}

// Users operadores.
func (s *Store) Users() repository.UserRepository {
	return &userRepo{db: s.committed}
}

// Movements movimientos de stock.
func (s *Store) Movements() repository.StockMovementRepository {
	return &movementRepo{db: s.committed}
}

// Shifts turnos de caja.
func (s *Store) Shifts() repository.ShiftRepository {
	return &shiftRepo{db: s.committed}
}

// AuditLogs registro de auditoría.
func (s *Store) AuditLogs() repository.AuditLogRepository {
	return &auditRepo{db: s.committed}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
