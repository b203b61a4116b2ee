package dto

// SeparationLineRequest una unidad demandada (una línea por unidad).
type SeparationLineRequest struct {
	SKU         string `json:"sku"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// SeparationRequest body para POST /api/inventory/separation.
type SeparationRequest struct {
	PriorityWarehouseID string                  `json:"priority_warehouse_id,omitempty"`
	Lines               []SeparationLineRequest `json:"lines"`
}

// OrderRefDTO referencia a un pedido.
type OrderRefDTO struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// AllocationDTO lo que una ubicación aporta a un SKU.
type AllocationDTO struct {
	SKU               string        `json:"sku"`
	ProductID         string        `json:"product_id"`
	LocationID        string        `json:"location_id"`
	LocationCode      string        `json:"location_code,omitempty"`
	WarehouseID       string        `json:"warehouse_id"`
	QuantityAllocated int64         `json:"quantity_allocated"`
	FulfilledOrders   []OrderRefDTO `json:"fulfilled_orders"`
}

// UnmetDemandDTO línea sin stock asignado.
type UnmetDemandDTO struct {
	SKU       string      `json:"sku"`
	Order     OrderRefDTO `json:"order"`
	Reason    string      `json:"reason"`
	Shortfall int64       `json:"shortfall"`
}

// SeparationResponse plan de separación (recomendación; no reserva stock).
type SeparationResponse struct {
	Allocations []AllocationDTO  `json:"allocations"`
	Unmet       []UnmetDemandDTO `json:"unmet"`
}
