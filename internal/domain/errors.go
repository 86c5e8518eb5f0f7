package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("...: %w") para dar contexto;
// los handlers los identifican con errors.Is.
var (
	// No encontrado
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrProductNotFound = errors.New("producto no encontrado")

	// Validación
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrInvalidAmount = errors.New("el monto debe ser mayor que cero")
	ErrNotCreditable = errors.New("solo facturas y tickets admiten nota de crédito")

	// Conflicto con el estado actual
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrShiftAlreadyOpen  = errors.New("ya existe un turno abierto para la caja")
	ErrNoOpenShift       = errors.New("no hay turno abierto para la caja")
	ErrShiftClosed       = errors.New("el turno está cerrado")
	ErrNotConvertible    = errors.New("solo un presupuesto puede convertirse")
	ErrAlreadyCredited   = errors.New("el documento ya fue acreditado")
	ErrInvalidTransition = errors.New("transición de estado no permitida")

	// Autenticación
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// IsNotFound agrupa los errores que el transporte traduce a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrProductNotFound)
}

// IsConflict agrupa los errores que el transporte traduce a 409.
func IsConflict(err error) bool {
	for _, target := range []error{
		ErrDuplicate, ErrShiftAlreadyOpen, ErrNoOpenShift, ErrShiftClosed,
		ErrNotConvertible, ErrAlreadyCredited, ErrInvalidTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation agrupa los errores que el transporte traduce a 400.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrNotCreditable)
}
