package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
)

// Código por error concreto; el primero que coincide gana.
var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrShiftAlreadyOpen, "SHIFT_ALREADY_OPEN"},
	{domain.ErrNoOpenShift, "NO_OPEN_SHIFT"},
	{domain.ErrShiftClosed, "SHIFT_CLOSED"},
	{domain.ErrNotConvertible, "NOT_CONVERTIBLE"},
	{domain.ErrAlreadyCredited, "ALREADY_CREDITED"},
	{domain.ErrInvalidTransition, "INVALID_TRANSITION"},
	{domain.ErrDuplicate, "DUPLICATE"},
	{domain.ErrNotCreditable, "NOT_CREDITABLE"},
	{domain.ErrInvalidAmount, "INVALID_AMOUNT"},
	{domain.ErrProductNotFound, "PRODUCT_NOT_FOUND"},
}

// writeError traduce un error de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "INTERNAL"
	switch {
	case domain.IsValidation(err):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case domain.IsNotFound(err):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case domain.IsConflict(err):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	}
	if status != fiber.StatusInternalServerError {
		for _, ec := range errorCodes {
			if errors.Is(err, ec.err) {
				code = ec.code
				break
			}
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
