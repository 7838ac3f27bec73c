package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// Stripe event types the storefront reacts to.
const (
	EventSessionCompleted      = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventSessionExpired        = "checkout.session.expired"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

const metadataOrderReference = "order_reference"

var hundred = decimal.NewFromInt(100)

// StripeConfig configures the Stripe processor.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// Backend overrides the API backend; nil uses the default.
	Backend stripe.Backend
}

type stripeProcessor struct {
	sessions      session.Client
	webhookSecret string
	logger        zerolog.Logger
}

// NewStripe creates a Processor backed by Stripe Checkout.
func NewStripe(cfg StripeConfig, logger zerolog.Logger) Processor {
	backend := cfg.Backend
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &stripeProcessor{
		sessions:      session.Client{B: backend, Key: cfg.SecretKey},
		webhookSecret: cfg.WebhookSecret,
		logger:        logger.With().Str("component", "stripe").Logger(),
	}
}

// toMinorUnits converts an amount to cents.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func (p *stripeProcessor) CreateSession(ctx context.Context, req model.PaymentSessionRequest) (*model.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(withSessionPlaceholder(req.SuccessURL)),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.Reference),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata(metadataOrderReference, req.Reference)

	for _, line := range req.Lines {
		item := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(toMinorUnits(line.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		}
		if line.Image != "" {
			item.PriceData.ProductData.Images = []*string{stripe.String(line.Image)}
		}
		params.LineItems = append(params.LineItems, item)
	}

	s, err := p.sessions.New(params)
	if err != nil {
		p.logger.Error().Err(err).Str("reference", req.Reference).Msg("failed to create checkout session")
		return nil, fmt.Errorf("%w: %v", model.ErrPaymentFailed, err)
	}

	p.logger.Info().Str("session_id", s.ID).Str("reference", req.Reference).Msg("checkout session created")

	return &model.PaymentSession{
		ID:           s.ID,
		RedirectURL:  s.URL,
		ClientSecret: s.ClientSecret,
	}, nil
}

func (p *stripeProcessor) ExpireSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := p.sessions.Expire(sessionID, params); err != nil {
		p.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to expire checkout session")
		return fmt.Errorf("failed to expire session %s: %w", sessionID, err)
	}
	return nil
}

func (p *stripeProcessor) ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		p.logger.Warn().Err(err).Msg("rejected payment notification")
		return nil, model.ErrInvalidSignature
	}

	result := &model.PaymentEvent{
		ID:      event.ID,
		Type:    string(event.Type),
		Outcome: outcomeFor(string(event.Type)),
	}
	if result.Outcome == model.PaymentIgnored {
		return result, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	result.SessionID = s.ID

	// Delayed payment methods complete the session before funds arrive;
	// the async_payment_* event settles those.
	if string(event.Type) == EventSessionCompleted && s.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		result.Outcome = model.PaymentIgnored
	}

	return result, nil
}

func withSessionPlaceholder(successURL string) string {
	sep := "?"
	if strings.Contains(successURL, "?") {
		sep = "&"
	}
	return successURL + sep + "session_id={CHECKOUT_SESSION_ID}"
}

func outcomeFor(eventType string) model.PaymentOutcome {
	switch eventType {
	case EventSessionCompleted, EventAsyncPaymentSucceeded:
		return model.PaymentCompleted
	case EventSessionExpired:
		return model.PaymentExpired
	case EventAsyncPaymentFailed:
		return model.PaymentFailed
	default:
		return model.PaymentIgnored
	}
}
