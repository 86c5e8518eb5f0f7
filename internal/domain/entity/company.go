package entity

// Company datos del emisor (la tienda) usados en PDF, UBL y ticket.
// Se cargan desde configuración; no hay tabla de empresas.
type Company struct {
	Name       string
	VATNumber  string
	Street     string
	City       string
	PostalCode string
	Country    string
	PeppolID   string
	Phone      string
	Email      string
}
