package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a customer record. ExternalID is nil for guests.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	FirstName  string    `json:"firstName" db:"first_name"`
	LastName   string    `json:"lastName" db:"last_name"`
	ExternalID *string   `json:"externalId,omitempty" db:"external_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// CustomerRequest is the admin payload for creating or updating a customer.
type CustomerRequest struct {
	Email      string  `json:"email" binding:"required"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	ExternalID *string `json:"externalId"`
}

// NormaliseEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email parses as a bare address.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
