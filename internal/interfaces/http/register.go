package http

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/shift"
	"github.com/jhoicas/pos-api/internal/domain"
)

// RegisterHeader cabecera con el número de caja del terminal.
const RegisterHeader = "X-Register"

// registerResolver resuelve caja y turno abierto una vez por request.
type registerResolver struct {
	shifts          *shift.Register
	defaultRegister int
}

// number lee X-Register; sin cabecera usa la caja por defecto.
func (r registerResolver) number(c *fiber.Ctx) (int, error) {
	raw := c.Get(RegisterHeader)
	if raw == "" {
		return r.defaultRegister, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s debe ser un entero positivo", domain.ErrInvalidInput, RegisterHeader)
	}
	return n, nil
}

// openShiftID id del turno abierto de la caja, "" si no hay ninguno.
func (r registerResolver) openShiftID(c *fiber.Ctx) (string, error) {
	n, err := r.number(c)
	if err != nil {
		return "", err
	}
	sh, err := r.shifts.Current(c.UserContext(), n)
	if errors.Is(err, domain.ErrNoOpenShift) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sh.ID, nil
}
