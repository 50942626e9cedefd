package model

import "time"

// Roles recognized by the API layer.
const (
	RoleArtist   = "ARTIST"
	RoleCustomer = "CUSTOMER"
)

// User represents a marketplace account. The catalog only ever sees the
// username as an opaque caller identity.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed in API responses
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
