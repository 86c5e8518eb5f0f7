package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/shift"
)

// ShiftHandler apertura, movimientos de efectivo, cierre y Z-report de los turnos de caja.
type ShiftHandler struct {
	shifts *shift.Register
	reg    registerResolver
}

// NewShiftHandler construye el handler.
func NewShiftHandler(shifts *shift.Register, reg registerResolver) *ShiftHandler {
	return &ShiftHandler{shifts: shifts, reg: reg}
}

// Open godoc
// @Summary      Abrir turno
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Register  header  int  false  "Número de caja"
// @Param        body  body  dto.OpenShiftRequest  true  "Fondo de caja"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/open [post]
func (h *ShiftHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	register := in.RegisterNumber
	if register == 0 {
		n, err := h.reg.number(c)
		if err != nil {
			return writeError(c, err)
		}
		register = n
	}
	cashier := in.CashierName
	if cashier == "" {
		cashier = GetUserName(c)
	}
	sh, err := h.shifts.OpenShift(c.UserContext(), shift.OpenShiftInput{
		OpeningCash:    in.OpeningCash,
		CashierName:    cashier,
		RegisterNumber: register,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewShiftResponse(sh))
}

// Current godoc
// @Summary      Turno abierto de la caja
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        X-Register  header  int  false  "Número de caja"
// @Success      200  {object}  dto.ShiftResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shifts/current [get]
func (h *ShiftHandler) Current(c *fiber.Ctx) error {
	n, err := h.reg.number(c)
	if err != nil {
		return writeError(c, err)
	}
	sh, err := h.shifts.Current(c.UserContext(), n)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewShiftResponse(sh))
}

// CashMovement godoc
// @Summary      Entrada o salida de efectivo
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Register  header  int  false  "Número de caja"
// @Param        body  body  dto.CashMovementRequest  true  "cash_in | cash_out"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/current/cash-movements [post]
func (h *ShiftHandler) CashMovement(c *fiber.Ctx) error {
	var in dto.CashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	n, err := h.reg.number(c)
	if err != nil {
		return writeError(c, err)
	}
	sh, err := h.shifts.AddCashMovement(c.UserContext(), shift.CashMovementInput{
		RegisterNumber: n,
		Type:           in.Type,
		Amount:         in.Amount,
		Reason:         in.Reason,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewShiftResponse(sh))
}

// Close godoc
// @Summary      Cerrar turno (manager/admin)
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Register  header  int  false  "Número de caja"
// @Param        body  body  dto.CloseShiftRequest  true  "Efectivo contado"
// @Success      200   {object}  dto.ShiftResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/current/close [post]
func (h *ShiftHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	n, err := h.reg.number(c)
	if err != nil {
		return writeError(c, err)
	}
	sh, err := h.shifts.CloseShift(c.UserContext(), shift.CloseShiftInput{
		RegisterNumber: n,
		CountedCash:    in.CountedCash,
		Notes:          in.Notes,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewShiftResponse(sh))
}

// List godoc
// @Summary      Listar turnos
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}  dto.ShiftResponse
// @Router       /api/shifts [get]
func (h *ShiftHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.shifts.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ShiftResponse, 0, len(list))
	for _, sh := range list {
		out = append(out, dto.NewShiftResponse(sh))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener turno
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del turno"
// @Success      200  {object}  dto.ShiftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id} [get]
func (h *ShiftHandler) Get(c *fiber.Ctx) error {
	sh, err := h.shifts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewShiftResponse(sh))
}

// ZReport godoc
// @Summary      Z-report del turno
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del turno"
// @Success      200  {object}  dto.ZReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/z-report [get]
func (h *ShiftHandler) ZReport(c *fiber.Ctx) error {
	report, err := h.shifts.ZReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
