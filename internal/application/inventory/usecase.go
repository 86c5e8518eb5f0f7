package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// StockLedger registra movimientos de stock de forma transaccional con bloqueo de fila
// (SELECT FOR UPDATE) sobre el producto. El stock puede quedar negativo.
type StockLedger struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	trail     *audit.Trail
	log       *logger.Logger
	now       func() time.Time
}

// NewStockLedger construye el libro de stock.
func NewStockLedger(
	txRunner TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	trail *audit.Trail,
	log *logger.Logger,
) *StockLedger {
	return &StockLedger{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		trail:     trail,
		log:       log.Named("stock_ledger"),
		now:       time.Now,
	}
}

// MovementInput entrada de RecordMovement. SKU vacío toma el del producto.
type MovementInput struct {
	ProductID     string
	SKU           string
	Type          string
	Quantity      int
	ReferenceType string
	ReferenceID   string
	Reason        string
	UserID        string
}

// RecordMovement lee el stock actual del producto (bloqueado) como StockBefore, aplica la
// dirección del tipo, guarda el movimiento y actualiza stock_qty. Usa los repos de la
// transacción del caller. Si el producto no existe devuelve domain.ErrProductNotFound.
func (l *StockLedger) RecordMovement(ctx context.Context, repos repository.Repos, in MovementInput) (*entity.StockMovement, error) {
	sign := entity.MovementSign(in.Type)
	if sign == 0 || in.ProductID == "" {
		return nil, fmt.Errorf("%w: movimiento %q", domain.ErrInvalidInput, in.Type)
	}

	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
	}

	sku := in.SKU
	if sku == "" {
		sku = product.SKU
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		SKU:           sku,
		Type:          in.Type,
		Quantity:      in.Quantity,
		StockBefore:   product.StockQty,
		StockAfter:    product.StockQty + sign*in.Quantity,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Reason:        in.Reason,
		CreatedBy:     in.UserID,
		CreatedAt:     l.now().UTC(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, mov.StockAfter); err != nil {
		return nil, err
	}

	l.log.Debug().
		Str("product_id", mov.ProductID).
		Str("type", mov.Type).
		Int("qty", mov.Quantity).
		Int("before", mov.StockBefore).
		Int("after", mov.StockAfter).
		Msg("movimiento de stock")
	return mov, nil
}

// ManualMovementInput movimiento cargado desde el back office (compras, ajustes, traspasos).
type ManualMovementInput struct {
	ProductID string
	Type      string // purchase, adjustment, transfer
	Quantity  int
	Reason    string
	UserID    string
}

// RegisterManualMovement valida y registra un movimiento manual con su entrada de auditoría,
// todo en una transacción.
func (l *StockLedger) RegisterManualMovement(ctx context.Context, in ManualMovementInput) (*entity.StockMovement, error) {
	switch in.Type {
	case entity.MovementPurchase, entity.MovementTransfer:
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
		}
	case entity.MovementAdjustment:
		if in.Quantity == 0 {
			return nil, fmt.Errorf("%w: la cantidad no puede ser cero", domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento manual %q", domain.ErrInvalidInput, in.Type)
	}

	product, err := l.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
	}

	var mov *entity.StockMovement
	err = l.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		mov, err = l.RecordMovement(ctx, repos, MovementInput{
			ProductID:     in.ProductID,
			Type:          in.Type,
			Quantity:      in.Quantity,
			ReferenceType: "manual",
			Reason:        in.Reason,
			UserID:        in.UserID,
		})
		if err != nil {
			return err
		}
		_, err = l.trail.Record(ctx, repos.Audit, audit.Entry{
			Action:       entity.AuditStockAdjustment,
			EntityType:   entity.AuditEntityProduct,
			EntityID:     product.ID,
			EntityNumber: product.SKU,
			Description:  fmt.Sprintf("%s %+d (%s)", in.Type, entity.MovementSign(in.Type)*in.Quantity, in.Reason),
			Before:       map[string]int{"stock_qty": mov.StockBefore},
			After:        map[string]int{"stock_qty": mov.StockAfter},
			Metadata:     map[string]string{"movement_id": mov.ID},
			UserID:       in.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("product_id", in.ProductID).Str("type", in.Type).Int("qty", in.Quantity).Msg("movimiento manual registrado")
	return mov, nil
}

// ListMovements movimientos de un producto (o de todos con productID vacío), más recientes primero.
func (l *StockLedger) ListMovements(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return l.movements.ListByProduct(ctx, productID, limit, offset)
}
