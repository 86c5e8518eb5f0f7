package documents

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Rendered archivo generado a partir de un documento.
type Rendered struct {
	Filename    string
	ContentType string
	Body        []byte
}

// OutputUseCase exporta documentos: PDF, UBL Peppol y ticket de caja.
type OutputUseCase struct {
	documents repository.DocumentRepository
	pdf       PDFGenerator
	ubl       UBLBuilder
	ticket    TicketPrinter
	issuer    entity.Company
}

// NewOutputUseCase construye el caso de uso; issuer son los datos de la tienda.
func NewOutputUseCase(documents repository.DocumentRepository, pdf PDFGenerator, ubl UBLBuilder, ticket TicketPrinter, issuer entity.Company) *OutputUseCase {
	return &OutputUseCase{documents: documents, pdf: pdf, ubl: ubl, ticket: ticket, issuer: issuer}
}

func (uc *OutputUseCase) load(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := uc.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, id)
	}
	return doc, nil
}

// PDF representación imprimible del documento.
func (uc *OutputUseCase) PDF(ctx context.Context, id string) (*Rendered, error) {
	doc, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := uc.pdf.GenerateDocumentPDF(ctx, doc, uc.issuer)
	if err != nil {
		return nil, fmt.Errorf("generar pdf %s: %w", doc.Number, err)
	}
	return &Rendered{Filename: doc.Number + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

// UBL XML Peppol BIS 3. Solo facturas y notas de crédito.
func (uc *OutputUseCase) UBL(ctx context.Context, id string) (*Rendered, error) {
	doc, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.DocType != entity.DocTypeInvoice && doc.DocType != entity.DocTypeCreditNote {
		return nil, fmt.Errorf("%w: UBL solo para facturas y notas de crédito", domain.ErrInvalidInput)
	}
	body, err := uc.ubl.BuildUBL(doc, uc.issuer)
	if err != nil {
		return nil, fmt.Errorf("generar ubl %s: %w", doc.Number, err)
	}
	return &Rendered{Filename: doc.Number + ".xml", ContentType: "application/xml", Body: body}, nil
}

// Ticket texto CP850 para la impresora térmica.
func (uc *OutputUseCase) Ticket(ctx context.Context, id string) (*Rendered, error) {
	doc, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := uc.ticket.PrintTicket(doc, uc.issuer)
	if err != nil {
		return nil, fmt.Errorf("generar ticket %s: %w", doc.Number, err)
	}
	return &Rendered{Filename: doc.Number + ".txt", ContentType: "text/plain; charset=ibm850", Body: body}, nil
}
