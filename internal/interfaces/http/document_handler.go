package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/documents"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// DocumentHandler expone el ciclo de vida de documentos y sus salidas (PDF, UBL, ticket).
type DocumentHandler struct {
	engine *documents.Engine
	output *documents.OutputUseCase
	reg    registerResolver
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(engine *documents.Engine, output *documents.OutputUseCase, reg registerResolver) *DocumentHandler {
	return &DocumentHandler{engine: engine, output: output, reg: reg}
}

// Create godoc
// @Summary      Crear documento
// @Description  Calcula totales, numera, registra cobros y mueve stock (ticket, factura, nota de entrega) en una transacción.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Register  header  int  false  "Número de caja"
// @Param        body  body  dto.CreateDocumentRequest  true  "Documento"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	shiftID, err := h.reg.openShiftID(c)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]documents.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, documents.ItemInput{
			ProductID:     it.ProductID,
			SKU:           it.SKU,
			Name:          it.Name,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			DiscountType:  it.DiscountType,
			DiscountValue: it.DiscountValue,
			VATRate:       it.VATRate,
		})
	}
	payments := make([]documents.PaymentInput, 0, len(in.Payments))
	for _, p := range in.Payments {
		payments = append(payments, documents.PaymentInput{Method: p.Method, Amount: p.Amount, Reference: p.Reference})
	}
	doc, err := h.engine.CreateDocument(c.UserContext(), documents.CreateDocumentInput{
		DocType:             in.DocType,
		CustomerID:          in.CustomerID,
		Items:               items,
		Payments:            payments,
		GlobalDiscountType:  in.GlobalDiscountType,
		GlobalDiscountValue: in.GlobalDiscountValue,
		Notes:               in.Notes,
		SourceDocumentID:    in.SourceDocumentID,
		ShiftID:             shiftID,
		UserID:              GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewDocumentResponse(doc))
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        doc_type     query  string  false  "Tipo"
// @Param        status       query  string  false  "Estado"
// @Param        customer_id  query  string  false  "Cliente"
// @Param        shift_id     query  string  false  "Turno"
// @Param        limit        query  int     false  "Límite"
// @Param        offset       query  int     false  "Offset"
// @Success      200  {array}   dto.DocumentResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.engine.List(c.UserContext(), repository.DocumentFilter{
		DocType:    c.Query("doc_type"),
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		ShiftID:    c.Query("shift_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.DocumentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dto.NewDocumentResponse(d))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	doc, err := h.engine.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewDocumentResponse(doc))
}

// Audit godoc
// @Summary      Historial de auditoría del documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {array}   dto.AuditLogResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/audit [get]
func (h *DocumentHandler) Audit(c *fiber.Ctx) error {
	logs, err := h.engine.AuditHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(auditResponses(logs))
}

// Pay godoc
// @Summary      Registrar cobro
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        X-Register  header  int  false  "Número de caja"
// @Param        body  body  dto.PaymentRequest  true  "Cobro"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/pay [post]
func (h *DocumentHandler) Pay(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	shiftID, err := h.reg.openShiftID(c)
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.engine.AddPayment(c.UserContext(), documents.AddPaymentInput{
		DocumentID: c.Params("id"),
		Method:     in.Method,
		Amount:     in.Amount,
		Reference:  in.Reference,
		ShiftID:    shiftID,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewDocumentResponse(doc))
}

// Convert godoc
// @Summary      Convertir presupuesto
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id           path   string  true  "ID del presupuesto"
// @Param        target_type  query  string  true  "invoice, receipt, proforma, delivery_note, purchase_order"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/convert [post]
func (h *DocumentHandler) Convert(c *fiber.Ctx) error {
	target := c.Query("target_type")
	if target == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "target_type es requerido"})
	}
	shiftID, err := h.reg.openShiftID(c)
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.engine.ConvertDocument(c.UserContext(), documents.ConvertInput{
		DocumentID: c.Params("id"),
		TargetType: target,
		ShiftID:    shiftID,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewDocumentResponse(doc))
}

// Duplicate godoc
// @Summary      Duplicar documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/duplicate [post]
func (h *DocumentHandler) Duplicate(c *fiber.Ctx) error {
	shiftID, err := h.reg.openShiftID(c)
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.engine.DuplicateDocument(c.UserContext(), documents.DuplicateInput{
		DocumentID: c.Params("id"),
		ShiftID:    shiftID,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewDocumentResponse(doc))
}

// Return godoc
// @Summary      Devolución (nota de crédito)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura o ticket"
// @Param        body  body  dto.CreateReturnRequest  false  "Líneas devueltas; vacío devuelve todo"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/return [post]
func (h *DocumentHandler) Return(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	shiftID, err := h.reg.openShiftID(c)
	if err != nil {
		return writeError(c, err)
	}
	lines := make([]documents.ReturnLine, 0, len(in.Items))
	for _, l := range in.Items {
		lines = append(lines, documents.ReturnLine{ItemIndex: l.ItemIndex, Quantity: l.Quantity})
	}
	cn, err := h.engine.CreateReturn(c.UserContext(), documents.ReturnInput{
		DocumentID:   c.Params("id"),
		Lines:        lines,
		RefundMethod: in.RefundMethod,
		Notes:        in.Notes,
		ShiftID:      shiftID,
		UserID:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewDocumentResponse(cn))
}

// ChangeStatus godoc
// @Summary      Cambiar estado de un presupuesto
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.ChangeStatusRequest  true  "sent | cancelled"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/status [patch]
func (h *DocumentHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	doc, err := h.engine.ChangeStatus(c.UserContext(), documents.ChangeStatusInput{
		DocumentID: c.Params("id"),
		Status:     in.Status,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewDocumentResponse(doc))
}

// PDF godoc
// @Summary      Documento en PDF
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/pdf [get]
func (h *DocumentHandler) PDF(c *fiber.Ctx) error {
	return h.send(c, h.output.PDF)
}

// UBL godoc
// @Summary      Factura o nota de crédito en UBL 2.1 (Peppol BIS 3)
// @Tags         documents
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/ubl [get]
func (h *DocumentHandler) UBL(c *fiber.Ctx) error {
	return h.send(c, h.output.UBL)
}

// Ticket godoc
// @Summary      Ticket de impresora térmica (CP850)
// @Tags         documents
// @Security     Bearer
// @Produce      text/plain
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/ticket [get]
func (h *DocumentHandler) Ticket(c *fiber.Ctx) error {
	return h.send(c, h.output.Ticket)
}

func (h *DocumentHandler) send(c *fiber.Ctx, render func(ctx context.Context, id string) (*documents.Rendered, error)) error {
	out, err := render(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, out.ContentType)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+out.Filename+`"`)
	return c.Send(out.Body)
}

func auditResponses(logs []*entity.AuditLog) []dto.AuditLogResponse {
	out := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.NewAuditLogResponse(l))
	}
	return out
}
