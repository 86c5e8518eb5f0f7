package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de cliente.
const (
	CustomerIndividual = "individual"
	CustomerCompany    = "company"
)

// Customer representa un cliente. El núcleo solo lo lee para tomar el snapshot del documento.
type Customer struct {
	ID           string
	Type         string
	Name         string
	VATNumber    string // ej. BE0123456789
	Email        string
	Phone        string
	Street       string
	City         string
	PostalCode   string
	Country      string // ISO 3166-1 alfa-2
	PeppolID     string // endpoint Peppol, ej. 0208:0123456789
	PeppolScheme string
	CreditLimit  decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot copia los campos que se congelan en el documento.
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		ID:         c.ID,
		Name:       c.Name,
		VATNumber:  c.VATNumber,
		Street:     c.Street,
		City:       c.City,
		PostalCode: c.PostalCode,
		Country:    c.Country,
		PeppolID:   c.PeppolID,
	}
}
