package model

import (
	"github.com/shopspring/decimal"
)

// PaymentOutcome is the storefront's reading of a processor event.
type PaymentOutcome string

const (
	PaymentCompleted PaymentOutcome = "completed"
	PaymentExpired   PaymentOutcome = "expired"
	PaymentFailed    PaymentOutcome = "failed"
	PaymentIgnored   PaymentOutcome = "ignored"
)

// PaymentEvent is a verified notification from the payment processor.
type PaymentEvent struct {
	ID        string
	Type      string
	Outcome   PaymentOutcome
	SessionID string
}

// PaymentSessionRequest carries what the processor needs to collect payment.
type PaymentSessionRequest struct {
	Reference     string
	CustomerEmail string
	Currency      string
	Total         decimal.Decimal
	Lines         []PaymentLine
	SuccessURL    string
	CancelURL     string
}

// PaymentLine describes one purchased product to the processor.
type PaymentLine struct {
	Name      string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// PaymentSession is the processor's answer to a session request.
type PaymentSession struct {
	ID           string
	RedirectURL  string
	ClientSecret string
}
