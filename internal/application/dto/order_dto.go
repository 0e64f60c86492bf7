package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderLineRequest prenda del pedido.
type CreateOrderLineRequest struct {
	GarmentType        string          `json:"garment_type" validate:"required,max=100"`
	LineType           string          `json:"line_type" validate:"omitempty,max=50"`
	Configuration      map[string]any  `json:"configuration"`
	FabricID           string          `json:"fabric_id" validate:"omitempty,uuid"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	MaterialCost       decimal.Decimal `json:"material_cost"`
	LaborCost          decimal.Decimal `json:"labor_cost"`
	FactoryCost        decimal.Decimal `json:"factory_cost"`
}

// CreateOrderRequest alta de pedido.
type CreateOrderRequest struct {
	OrderType             string                   `json:"order_type" validate:"required,oneof=artesanal industrial proveedor oficial"`
	RecipientType         string                   `json:"recipient_type" validate:"required,oneof=cliente oficial stock"`
	ClientID              string                   `json:"client_id" validate:"omitempty,uuid"`
	StoreID               string                   `json:"store_id" validate:"required,uuid"`
	EstimatedDeliveryDate *time.Time               `json:"estimated_delivery_date"`
	DiscountPercentage    decimal.Decimal          `json:"discount_percentage"`
	TotalPaid             decimal.Decimal          `json:"total_paid"`
	Notes                 string                   `json:"notes" validate:"omitempty,max=2000"`
	Lines                 []CreateOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ChangeStatusRequest cuerpo de PATCH .../status. El valor se valida contra el enum en el
// caso de uso, sin normalizar mayúsculas ni espacios.
type ChangeStatusRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
	Notes     string `json:"notes" validate:"omitempty,max=2000"`
}

// OrderLineResponse prenda en la respuesta.
type OrderLineResponse struct {
	ID                 string          `json:"id"`
	GarmentType        string          `json:"garment_type"`
	LineType           string          `json:"line_type,omitempty"`
	Configuration      json.RawMessage `json:"configuration,omitempty"`
	FabricID           string          `json:"fabric_id,omitempty"`
	Status             string          `json:"status"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	NetPrice           decimal.Decimal `json:"net_price"`
	Cost               decimal.Decimal `json:"cost"`
}

// OrderResponse pedido con prendas (las prendas se omiten en listados).
type OrderResponse struct {
	ID                    string              `json:"id"`
	OrderNumber           string              `json:"order_number"`
	OrderType             string              `json:"order_type"`
	RecipientType         string              `json:"recipient_type"`
	Status                string              `json:"status"`
	ClientID              string              `json:"client_id,omitempty"`
	StoreID               string              `json:"store_id"`
	EstimatedDeliveryDate *time.Time          `json:"estimated_delivery_date,omitempty"`
	DiscountPercentage    decimal.Decimal     `json:"discount_percentage"`
	Total                 decimal.Decimal     `json:"total"`
	TotalPaid             decimal.Decimal     `json:"total_paid"`
	TotalPending          decimal.Decimal     `json:"total_pending"`
	TotalCost             decimal.Decimal     `json:"total_cost"`
	Notes                 string              `json:"notes,omitempty"`
	CreatedBy             string              `json:"created_by,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
	Lines                 []OrderLineResponse `json:"lines,omitempty"`
}

// OrderListResponse página de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// StateHistoryResponse entrada del historial.
type StateHistoryResponse struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	LineID         string    `json:"line_id,omitempty"`
	PreviousStatus *string   `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ChangedBy      string    `json:"changed_by"`
	Notes          string    `json:"notes,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}
