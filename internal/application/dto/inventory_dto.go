package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// ENTRY: destination_location_id. EXIT: origin_location_id. TRANSFER: ambos.
type RegisterMovementRequest struct {
	ProductID             string           `json:"product_id"`
	Type                  string           `json:"type"`
	Quantity              int64            `json:"quantity"`
	OriginLocationID      string           `json:"origin_location_id,omitempty"`
	DestinationLocationID string           `json:"destination_location_id,omitempty"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference             string           `json:"reference,omitempty"`
}

// MovementResponse entrada del log de movimientos.
type MovementResponse struct {
	ID                    string           `json:"id"`
	Type                  string           `json:"type"`
	ProductID             string           `json:"product_id"`
	OriginLocationID      string           `json:"origin_location_id,omitempty"`
	DestinationLocationID string           `json:"destination_location_id,omitempty"`
	Quantity              int64            `json:"quantity"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost             *decimal.Decimal `json:"total_cost,omitempty"`
	Reference             string           `json:"reference,omitempty"`
	CreatedBy             string           `json:"created_by,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
}

// MovementListResponse respuesta de GET /api/inventory/movements.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockResponse registro del ledger.
type StockResponse struct {
	ProductID  string    `json:"product_id"`
	LocationID string    `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at"`
}
