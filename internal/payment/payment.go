// Package payment talks to the external payment processor.
package payment

import (
	"context"
	"fmt"
	"net/url"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// Processor creates hosted payment sessions and verifies processor notifications.
type Processor interface {
	// CreateSession opens a payment session for the request.
	CreateSession(ctx context.Context, req model.PaymentSessionRequest) (*model.PaymentSession, error)

	// ExpireSession cancels an open session so it can no longer be paid.
	ExpireSession(ctx context.Context, sessionID string) error

	// ParseEvent verifies signature over payload and maps the event to a payment outcome.
	ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error)
}

// DemoSessionPrefix marks synthetic session ids created without a processor.
const DemoSessionPrefix = "demo_"

type demoProcessor struct{}

// NewDemo returns a Processor that issues synthetic sessions and never receives notifications.
func NewDemo() Processor {
	return demoProcessor{}
}

func (demoProcessor) CreateSession(_ context.Context, req model.PaymentSessionRequest) (*model.PaymentSession, error) {
	id := DemoSessionPrefix + uuid.NewString()

	redirect, err := url.Parse(req.SuccessURL)
	if err != nil {
		return nil, fmt.Errorf("invalid success url: %w", err)
	}
	q := redirect.Query()
	q.Set("session_id", id)
	redirect.RawQuery = q.Encode()

	return &model.PaymentSession{ID: id, RedirectURL: redirect.String()}, nil
}

func (demoProcessor) ExpireSession(context.Context, string) error {
	return nil
}

func (demoProcessor) ParseEvent([]byte, string) (*model.PaymentEvent, error) {
	return nil, model.ErrPaymentUnavailable
}
