package entity

import "time"

// OrderStateHistory registro inmutable de un cambio de estado. Nunca se actualiza ni se borra.
// LineID vacío = cambio a nivel de pedido. PreviousStatus vacío = alta del pedido.
type OrderStateHistory struct {
	ID             string
	OrderID        string
	LineID         string
	PreviousStatus OrderStatus
	NewStatus      OrderStatus
	ChangedBy      string
	Notes          string
	ChangedAt      time.Time
}
