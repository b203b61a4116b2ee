package entity

// Product es la vista mínima de un producto del catálogo (CRUD externo).
type Product struct {
	ID   string
	SKU  string // código estable, independiente del ID interno
	Name string
}
