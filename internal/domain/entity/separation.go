package entity

// Motivos de demanda no atendida.
const (
	UnmetReasonProductNotFound   = "product not found"
	UnmetReasonInsufficientStock = "insufficient stock"
)

// OrderLine es una unidad demandada. Varias líneas con el mismo SKU son unidades distintas.
type OrderLine struct {
	SKU         string
	OrderID     string
	OrderNumber string
}

// Ref devuelve la referencia del pedido al que pertenece la línea.
func (l OrderLine) Ref() OrderRef {
	return OrderRef{OrderID: l.OrderID, OrderNumber: l.OrderNumber}
}

// OrderRef identifica el pedido atendido (o no) por una línea.
type OrderRef struct {
	OrderID     string
	OrderNumber string
}

// AllocationResult agrupa lo que una ubicación aporta a un SKU.
type AllocationResult struct {
	SKU               string
	ProductID         string
	LocationID        string
	LocationCode      string
	WarehouseID       string
	QuantityAllocated int64
	FulfilledOrders   []OrderRef
}

// UnmetDemand es una línea de pedido sin stock asignado.
// Shortfall es el total de unidades del SKU que quedaron sin atender en la solicitud.
type UnmetDemand struct {
	SKU       string
	Order     OrderRef
	Reason    string
	Shortfall int64
}

// AllocationPlan es el resultado de una separación. Es una recomendación, no una reserva:
// el ledger no se modifica y el stock puede cambiar antes de ejecutar el picking.
type AllocationPlan struct {
	Allocations []AllocationResult
	Unmet       []UnmetDemand
}
