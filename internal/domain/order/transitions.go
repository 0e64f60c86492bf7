// Package order contiene las reglas puras del ciclo de vida de un pedido de sastrería.
package order

import "github.com/jhoicas/Sastreria-api/internal/domain/entity"

// TransitionPolicy decide si un cambio de estado es admisible.
// El enum ya viene validado; la política solo mira el par (desde, hacia).
type TransitionPolicy interface {
	Allowed(from, to entity.OrderStatus) bool
}

// PermissiveTransitions acepta cualquier destino desde cualquier estado.
// El personal corrige estados a mano (ej. volver de delivered a adjustments), así que es la
// política por defecto.
type PermissiveTransitions struct{}

// Allowed siempre true.
func (PermissiveTransitions) Allowed(_, _ entity.OrderStatus) bool { return true }

// StrictTransitions aplica la tabla de adyacencia de strictEdges.
type StrictTransitions struct{}

// Allowed informa si to es un sucesor permitido de from.
func (StrictTransitions) Allowed(from, to entity.OrderStatus) bool {
	for _, s := range strictEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Successors devuelve los destinos permitidos por la tabla estricta.
// Nil si el estado no figura en la tabla.
func Successors(from entity.OrderStatus) []entity.OrderStatus {
	edges, ok := strictEdges[from]
	if !ok {
		return nil
	}
	out := make([]entity.OrderStatus, len(edges))
	copy(out, edges)
	return out
}

var strictEdges = map[entity.OrderStatus][]entity.OrderStatus{
	entity.StatusCreated: {
		entity.StatusFabricOrdered, entity.StatusFactoryOrdered, entity.StatusInProduction,
		entity.StatusRequested, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusFabricOrdered: {
		entity.StatusFabricReceived, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusFabricReceived: {
		entity.StatusFactoryOrdered, entity.StatusInProduction, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusFactoryOrdered: {
		entity.StatusInProduction, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusInProduction: {
		entity.StatusFitting, entity.StatusFinished, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusFitting: {
		entity.StatusAdjustments, entity.StatusFinished, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusAdjustments: {
		entity.StatusFitting, entity.StatusFinished, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusFinished: {
		entity.StatusDelivered, entity.StatusAdjustments, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusRequested: {
		entity.StatusSupplierDelivered, entity.StatusIncident, entity.StatusCancelled,
	},
	entity.StatusSupplierDelivered: {
		entity.StatusFinished, entity.StatusDelivered, entity.StatusIncident, entity.StatusCancelled,
	},
	// incident es recuperable: vuelve a cualquier punto del flujo.
	entity.StatusIncident: {
		entity.StatusCreated, entity.StatusFabricOrdered, entity.StatusFabricReceived,
		entity.StatusFactoryOrdered, entity.StatusInProduction, entity.StatusFitting,
		entity.StatusAdjustments, entity.StatusFinished, entity.StatusDelivered,
		entity.StatusRequested, entity.StatusSupplierDelivered, entity.StatusCancelled,
	},
	entity.StatusDelivered: {entity.StatusIncident},
	entity.StatusCancelled: {},
}
