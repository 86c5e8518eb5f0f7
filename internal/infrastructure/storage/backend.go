// Package storage elige el backend de persistencia según STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// TxRunner ejecuta fn en una transacción del backend.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// Backend repositorios y runner de transacciones listos para los casos de uso.
type Backend struct {
	Tx         TxRunner
	Repos      repository.Repos
	Users      repository.UserRepository
	Categories repository.CategoryRepository
	close      func()
}

// Close libera conexiones (no-op en memoria).
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open abre el backend configurado. Con postgres aplica antes las migraciones pendientes.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		store := memory.New()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return &Backend{
			Tx:         store,
			Repos:      store.Repos(),
			Users:      store.Users(),
			Categories: store.Categories(),
		}, nil
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		for _, name := range applied {
			log.Info().Str("migration", name).Msg("migración aplicada")
		}
		return &Backend{
			Tx:         postgres.NewTxRunner(pool),
			Repos:      postgres.NewRepos(pool),
			Users:      postgres.NewUserRepository(pool),
			Categories: postgres.NewCategoryRepository(pool),
			close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
	}
}
