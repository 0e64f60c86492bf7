package entity

// Role agrupa permisos bajo un nombre único (ej. "administrador", "sastre").
// Color e Icon son solo de presentación.
type Role struct {
	ID          string
	Name        string
	DisplayName string
	Color       string
	Icon        string
}

// Permission es una capacidad atómica ("clients.create", "orders.edit").
type Permission struct {
	ID          string
	Code        string
	Description string
}

// Códigos de permiso que usa el backend.
const (
	PermOrdersView    = "orders.view"
	PermOrdersCreate  = "orders.create"
	PermOrdersEdit    = "orders.edit"
	PermClientsView   = "clients.view"
	PermClientsCreate = "clients.create"
	// PermStoresAll da alcance sobre todas las tiendas sin asociación en user_stores.
	PermStoresAll = "stores.all"
)

// ResolvedAuthContext es lo que un usuario puede hacer y dónde. Se calcula por petición.
type ResolvedAuthContext struct {
	UserID      string
	Roles       []string
	Permissions []string
	Stores      []StoreAccess
	IsStaff     bool
}

// HasPermission informa si el contexto incluye el permiso.
func (c *ResolvedAuthContext) HasPermission(code string) bool {
	for _, p := range c.Permissions {
		if p == code {
			return true
		}
	}
	return false
}
