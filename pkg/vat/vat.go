// Package vat normaliza y valida números de IVA. Para Bélgica comprueba el número de
// empresa (BCE/KBO) con el control módulo 97.
package vat

import (
	"fmt"
	"strings"
	"unicode"
)

// BelgianPrefix prefijo de país de los números de IVA belgas.
const BelgianPrefix = "BE"

// Normalize deja el número en mayúsculas y sin espacios, puntos ni guiones:
// "be 0123.456.749" → "BE0123456749".
func Normalize(number string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(number) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsBelgian indica si el número normalizado lleva prefijo BE.
func IsBelgian(number string) bool {
	return strings.HasPrefix(number, BelgianPrefix)
}

// ValidateBelgian valida un número de IVA belga ya normalizado: BE + 10 dígitos, primer
// dígito 0 o 1, y los dos últimos igual a 97 - (los ocho primeros mod 97).
func ValidateBelgian(number string) error {
	digits := strings.TrimPrefix(number, BelgianPrefix)
	if len(digits) == 9 {
		// formato antiguo de 9 dígitos
		digits = "0" + digits
	}
	if len(digits) != 10 || len(extractDigits(digits)) != 10 {
		return fmt.Errorf("vat: %s debe tener 10 dígitos tras BE", number)
	}
	if digits[0] != '0' && digits[0] != '1' {
		return fmt.Errorf("vat: %s debe empezar por 0 o 1", number)
	}
	expected, err := ComputeBelgianCheck(digits[:8])
	if err != nil {
		return err
	}
	got := int(digits[8]-'0')*10 + int(digits[9]-'0')
	if got != expected {
		return fmt.Errorf("vat: control de %s inválido: esperado %02d, recibido %02d", number, expected, got)
	}
	return nil
}

// ComputeBelgianCheck calcula los dos dígitos de control para los 8 primeros dígitos.
func ComputeBelgianCheck(base string) (int, error) {
	digits := extractDigits(base)
	if len(digits) != 8 {
		return 0, fmt.Errorf("vat: se requieren 8 dígitos para el control, se encontraron %d", len(digits))
	}
	n := 0
	for _, d := range digits {
		n = n*10 + int(d-'0')
	}
	return 97 - n%97, nil
}

// EnterpriseNumber número de empresa de 10 dígitos (identificador Peppol 0208).
func EnterpriseNumber(number string) string {
	digits := string(extractDigits(number))
	if len(digits) == 9 {
		digits = "0" + digits
	}
	return digits
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
