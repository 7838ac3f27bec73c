package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutRequest represents the payload submitted from the storefront cart.
type CheckoutRequest struct {
	Items      []CheckoutItem `json:"items"`
	Guest      *GuestContact  `json:"guest,omitempty"`
	SuccessURL string         `json:"successUrl"`
	CancelURL  string         `json:"cancelUrl"`
}

// CheckoutItem is one cart line. Price is the cart's snapshot and is trusted for the total.
type CheckoutItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// GuestContact identifies a purchaser without an authenticated identity.
type GuestContact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// CheckoutResult is returned once an order has been reserved.
type CheckoutResult struct {
	OrderID      uuid.UUID       `json:"orderId"`
	SessionID    string          `json:"sessionId"`
	RedirectURL  string          `json:"redirectUrl"`
	ClientSecret string          `json:"clientSecret,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	Demo         bool            `json:"demo"`
}

// Identity is the verified claim set from the external identity provider.
type Identity struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}
