package dto

// StoreAccessResponse tienda asociada al usuario.
type StoreAccessResponse struct {
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name"`
	StoreCode string `json:"store_code"`
	IsPrimary bool   `json:"is_primary"`
}

// AccessResponse contexto de autorización resuelto; el front lo usa para mostrar u ocultar
// acciones. El servidor vuelve a comprobar cada mutación.
type AccessResponse struct {
	UserID      string                `json:"user_id"`
	Roles       []string              `json:"roles"`
	Permissions []string              `json:"permissions"`
	Stores      []StoreAccessResponse `json:"stores"`
	IsStaff     bool                  `json:"is_staff"`
}
