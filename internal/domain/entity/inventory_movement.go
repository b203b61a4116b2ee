package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeENTRY    = "ENTRY"    // entrada: solo destino
	MovementTypeEXIT     = "EXIT"     // salida: solo origen
	MovementTypeTRANSFER = "TRANSFER" // traslado entre ubicaciones
)

// NoLocation es el centinela "sin ubicación" para origen/destino.
const NoLocation = ""

// Movement es una entrada inmutable del log de movimientos.
// Solo se persiste después de aplicarse con éxito al ledger.
type Movement struct {
	ID                    string
	Type                  string
	ProductID             string
	OriginLocationID      string // NoLocation en ENTRY
	DestinationLocationID string // NoLocation en EXIT
	Quantity              int64  // siempre positivo; el tipo indica la dirección
	UnitCost              *decimal.Decimal
	Reference             string // pedido, nota de recepción, etc.
	CreatedBy             string
	CreatedAt             time.Time
}

// TotalCost devuelve Quantity * UnitCost, o nil si el movimiento no lleva costo.
func (m *Movement) TotalCost() *decimal.Decimal {
	if m.UnitCost == nil {
		return nil
	}
	total := m.UnitCost.Mul(decimal.NewFromInt(m.Quantity))
	return &total
}
