package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de un pedido de sastrería (o de una de sus prendas).
type OrderStatus string

// Estados del pedido. Enum cerrado; cualquier otro valor se rechaza.
const (
	StatusCreated           OrderStatus = "created"
	StatusFabricOrdered     OrderStatus = "fabric_ordered"
	StatusFabricReceived    OrderStatus = "fabric_received"
	StatusFactoryOrdered    OrderStatus = "factory_ordered"
	StatusInProduction      OrderStatus = "in_production"
	StatusFitting           OrderStatus = "fitting"
	StatusAdjustments       OrderStatus = "adjustments"
	StatusFinished          OrderStatus = "finished"
	StatusDelivered         OrderStatus = "delivered"
	StatusIncident          OrderStatus = "incident"
	StatusCancelled         OrderStatus = "cancelled"
	StatusRequested         OrderStatus = "requested"          // pedido a proveedor
	StatusSupplierDelivered OrderStatus = "supplier_delivered" // pedido a proveedor
)

// OrderStatuses lista el enum completo en orden de flujo.
var OrderStatuses = []OrderStatus{
	StatusCreated, StatusFabricOrdered, StatusFabricReceived, StatusFactoryOrdered,
	StatusInProduction, StatusFitting, StatusAdjustments, StatusFinished, StatusDelivered,
	StatusIncident, StatusCancelled, StatusRequested, StatusSupplierDelivered,
}

// Valid informa si s pertenece al enum.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal indica estados tras los que no se esperan más transiciones (no se bloquean).
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Tipos de pedido.
const (
	OrderTypeArtesanal  = "artesanal"
	OrderTypeIndustrial = "industrial"
	OrderTypeProveedor  = "proveedor"
	OrderTypeOficial    = "oficial"
)

// Tipos de destinatario.
const (
	RecipientCliente = "cliente"
	RecipientOficial = "oficial"
	RecipientStock   = "stock"
)

// TailoringOrder pedido de prendas a medida.
type TailoringOrder struct {
	ID                    string
	OrderNumber           string // legible y único, ej. SA-2026-000123
	OrderType             string
	RecipientType         string
	Status                OrderStatus
	ClientID              string // vacío si no hay cliente
	StoreID               string
	EstimatedDeliveryDate *time.Time
	DiscountPercentage    decimal.Decimal
	Total                 decimal.Decimal
	TotalPaid             decimal.Decimal
	TotalPending          decimal.Decimal
	TotalCost             decimal.Decimal
	Notes                 string
	CreatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Lines []*TailoringOrderLine
}

// TailoringOrderLine una prenda del pedido. Tiene su propio estado, independiente del pedido.
type TailoringOrderLine struct {
	ID                 string
	OrderID            string
	GarmentType        string
	LineType           string
	Configuration      json.RawMessage // mapa abierto clave-valor (medidas, solapa, forro...)
	FabricID           string
	Status             OrderStatus
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	TaxRate            decimal.Decimal // porcentaje, ej. 21
	MaterialCost       decimal.Decimal
	LaborCost          decimal.Decimal
	FactoryCost        decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

var hundred = decimal.NewFromInt(100)

// NetPrice precio de la línea con descuento e impuesto aplicados.
func (l *TailoringOrderLine) NetPrice() decimal.Decimal {
	discounted := l.UnitPrice.Mul(decimal.NewFromInt(1).Sub(l.DiscountPercentage.Div(hundred)))
	return discounted.Mul(decimal.NewFromInt(1).Add(l.TaxRate.Div(hundred))).Round(2)
}

// Cost costo total de la línea (material + mano de obra + fábrica).
func (l *TailoringOrderLine) Cost() decimal.Decimal {
	return l.MaterialCost.Add(l.LaborCost).Add(l.FactoryCost)
}

// RecalculateTotals recalcula Total, TotalPending y TotalCost a partir de las líneas.
// TotalPaid no se toca.
func (o *TailoringOrder) RecalculateTotals() {
	sum := decimal.Zero
	cost := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.NetPrice())
		cost = cost.Add(l.Cost())
	}
	o.Total = sum.Mul(decimal.NewFromInt(1).Sub(o.DiscountPercentage.Div(hundred))).Round(2)
	o.TotalCost = cost.Round(2)
	o.TotalPending = o.Total.Sub(o.TotalPaid)
}
