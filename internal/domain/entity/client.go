package entity

import "time"

// Client representa un cliente de la sastrería.
type Client struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
