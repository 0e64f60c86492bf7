package entity

import "time"

// Store representa una tienda o taller físico.
type Store struct {
	ID        string
	Name      string
	Code      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreAccess es la asociación usuario-tienda normalizada (user_stores ⋈ stores).
// Debería haber exactamente una tienda primaria por usuario; la DB no lo garantiza.
type StoreAccess struct {
	StoreID   string
	StoreName string
	StoreCode string
	IsPrimary bool
}
