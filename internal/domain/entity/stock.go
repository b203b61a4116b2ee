package entity

import "time"

// StockRecord es la cantidad de un producto en una ubicación (fila del ledger).
// Único por (ProductID, LocationID). Quantity nunca es negativa; un registro en cero
// sigue existiendo y es distinto de "sin registro".
type StockRecord struct {
	ProductID  string
	LocationID string
	Quantity   int64
	UpdatedAt  time.Time
}

// AvailableStock es un StockRecord con stock positivo, enriquecido con la bodega
// a la que pertenece la ubicación (modelo de lectura para la separación).
type AvailableStock struct {
	StockRecord
	WarehouseID  string
	LocationCode string
}
