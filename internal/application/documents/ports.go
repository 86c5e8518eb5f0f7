package documents

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// DocumentTxRunner ejecuta fn en una transacción. Documento, movimientos de stock, turno,
// vínculos y auditoría se confirman o se deshacen juntos.
type DocumentTxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// StockRecorder libro de stock usado con los repos de la transacción del motor.
// Con producto inexistente devuelve domain.ErrProductNotFound.
type StockRecorder interface {
	RecordMovement(ctx context.Context, repos repository.Repos, in inventory.MovementInput) (*entity.StockMovement, error)
}

// ShiftEffects acumuladores del turno de caja afectados por los documentos.
type ShiftEffects interface {
	RecordSaleEffect(ctx context.Context, repos repository.Repos, shiftID string, total, vatTotal decimal.Decimal, paymentsByMethod map[string]decimal.Decimal) error
	RecordStandalonePayment(ctx context.Context, repos repository.Repos, shiftID, method string, amount decimal.Decimal) error
	RecordRefund(ctx context.Context, repos repository.Repos, shiftID string, amount decimal.Decimal, method string) error
}

// PDFGenerator representación gráfica del documento.
type PDFGenerator interface {
	GenerateDocumentPDF(ctx context.Context, doc *entity.Document, issuer entity.Company) ([]byte, error)
}

// UBLBuilder XML UBL 2.1 (Peppol BIS Billing 3.0) de facturas y notas de crédito.
type UBLBuilder interface {
	BuildUBL(doc *entity.Document, issuer entity.Company) ([]byte, error)
}

// TicketPrinter ticket de caja listo para la impresora térmica.
type TicketPrinter interface {
	PrintTicket(doc *entity.Document, issuer entity.Company) ([]byte, error)
}
