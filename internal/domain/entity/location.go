package entity

// Location es una posición física (estante, pasillo) dentro de una bodega.
// Pertenece al CRUD externo; el núcleo solo la lee.
type Location struct {
	ID          string
	WarehouseID string
	Code        string
}
