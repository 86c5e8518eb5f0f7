package entity

// Category familia de productos, con nombre bilingüe (FR/NL) como en el catálogo de la tienda.
type Category struct {
	ID     string
	NameFR string
	NameNL string
}
