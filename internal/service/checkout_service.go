package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// compensationTimeout bounds the best-effort session expiry after a failed checkout.
const compensationTimeout = 10 * time.Second

// CheckoutConfig holds the checkout settings that come from configuration.
type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string

	// DemoMode provisions unknown products from the cart instead of rejecting them.
	DemoMode       bool
	DemoStockLevel int
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	txr         repository.Transactor
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	processor   payment.Processor
	notifier    OrderNotifier
	cfg         CheckoutConfig
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	txr repository.Transactor,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	processor payment.Processor,
	notifier OrderNotifier,
	cfg CheckoutConfig,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		txr:         txr,
		productRepo: productRepo,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		processor:   processor,
		notifier:    notifierOrNop(notifier),
		cfg:         cfg,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// checkoutLine is a validated cart line joined with its catalogue product, if any.
type checkoutLine struct {
	item    model.CheckoutItem
	product *model.Product
}

func (l checkoutLine) name() string {
	if l.product != nil && l.product.Name != "" {
		return l.product.Name
	}
	return l.item.Name
}

func (l checkoutLine) available(demoStock int) int {
	if l.product != nil {
		return l.product.Stock
	}
	return demoStock
}

// Checkout reserves stock, records a pending order and opens a payment session.
func (s *checkoutService) Checkout(ctx context.Context, identity *model.Identity, req *model.CheckoutRequest) (*model.CheckoutResult, error) {
	if req == nil {
		return nil, model.ErrEmptyCart
	}

	items, err := s.mergeItems(req.Items)
	if err != nil {
		return nil, err
	}

	if err := validateContact(identity, req.Guest); err != nil {
		s.logger.Warn().Msg("checkout without identity or guest contact")
		return nil, err
	}

	lines, missing, err := s.resolveProducts(ctx, items)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tx, err := s.txr.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	var sessionID string
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		if sessionID != "" {
			s.expireSession(ctx, sessionID)
		}
	}()

	user, err := resolveUser(ctx, s.userRepo, tx, identity, req.Guest)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve customer")
		return nil, err
	}

	if len(missing) > 0 {
		if err := s.productRepo.InsertMissing(ctx, tx, missing); err != nil {
			s.logger.Error().Err(err).Int("count", len(missing)).Msg("failed to provision demo products")
			return nil, fmt.Errorf("failed to provision products: %w", err)
		}
		s.logger.Info().Int("count", len(missing)).Msg("provisioned demo products")
	}

	orderID := uuid.New()
	session, err := s.createSession(ctx, orderID, user.Email, total, lines, req)
	if err != nil {
		return nil, err
	}
	sessionID = session.ID

	for _, line := range lines {
		ok, err := s.productRepo.ReserveStock(ctx, tx, line.item.ID, line.item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		if !ok {
			s.logger.Warn().
				Str("product_id", line.item.ID).
				Int("quantity", line.item.Quantity).
				Msg("stock changed during checkout")
			return nil, model.NewInsufficientStockError(line.item.ID, line.name(),
				line.available(s.cfg.DemoStockLevel), line.item.Quantity)
		}
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:               orderID,
		UserID:           &user.ID,
		Total:            total,
		Currency:         s.cfg.Currency,
		Status:           model.OrderStatusPending,
		PaymentSessionID: session.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := make([]model.OrderItem, len(lines))
	for i, line := range lines {
		orderItems[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   line.item.ID,
			ProductName: line.name(),
			Quantity:    line.item.Quantity,
			UnitPrice:   line.item.Price,
		}
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	committed = true
	order.Items = orderItems

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("session_id", session.ID).
		Str("total", total.StringFixed(2)).
		Int("item_count", len(orderItems)).
		Bool("demo", s.cfg.DemoMode).
		Msg("checkout completed")

	s.notifier.Publish(model.OrderEvent{Type: model.OrderEventCreated, Order: order})

	return &model.CheckoutResult{
		OrderID:      orderID,
		SessionID:    session.ID,
		RedirectURL:  session.RedirectURL,
		ClientSecret: session.ClientSecret,
		Total:        total,
		Status:       order.Status,
		Demo:         s.cfg.DemoMode,
	}, nil
}

// mergeItems validates the cart and folds repeated products into one line.
// The first occurrence keeps its price, name and image.
func (s *checkoutService) mergeItems(items []model.CheckoutItem) ([]model.CheckoutItem, error) {
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	merged := make([]model.CheckoutItem, 0, len(items))
	index := make(map[string]int, len(items))
	for i, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: product id is required", i))
		}
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}
		// Order rows and processor line items are kept in whole cents.
		if !model.ValidPrice(item.Price) {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ID).
				Str("price", item.Price.String()).
				Msg("invalid price")
			return nil, model.ErrInvalidPrice
		}

		if at, ok := index[item.ID]; ok {
			merged[at].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// resolveProducts joins the cart with the catalogue and checks stock before anything is written.
// In demo mode the products the catalogue lacks are returned for provisioning.
func (s *checkoutService) resolveProducts(ctx context.Context, items []model.CheckoutItem) ([]checkoutLine, []model.Product, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load cart products")
		return nil, nil, fmt.Errorf("failed to get products: %w", err)
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]checkoutLine, len(items))
	var missing []model.Product
	for i, item := range items {
		product := byID[item.ID]
		lines[i] = checkoutLine{item: item, product: product}

		if product == nil && !s.cfg.DemoMode {
			s.logger.Warn().Str("product_id", item.ID).Msg("cart references unknown product")
			return nil, nil, model.NewProductNotFoundError(item.ID)
		}

		available := lines[i].available(s.cfg.DemoStockLevel)
		if item.Quantity > available {
			s.logger.Warn().
				Str("product_id", item.ID).
				Int("available", available).
				Int("requested", item.Quantity).
				Msg("insufficient stock")
			return nil, nil, model.NewInsufficientStockError(item.ID, lines[i].name(), available, item.Quantity)
		}

		if product == nil {
			missing = append(missing, model.Product{
				ID:    item.ID,
				Name:  item.Name,
				Image: item.Image,
				Price: item.Price,
				Stock: s.cfg.DemoStockLevel,
				Tags:  []string{},
			})
		}
	}
	return lines, missing, nil
}

func (s *checkoutService) createSession(ctx context.Context, orderID uuid.UUID, email string, total decimal.Decimal, lines []checkoutLine, req *model.CheckoutRequest) (*model.PaymentSession, error) {
	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.cfg.SuccessURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.cfg.CancelURL
	}

	paymentLines := make([]model.PaymentLine, len(lines))
	for i, line := range lines {
		paymentLines[i] = model.PaymentLine{
			Name:      line.name(),
			Image:     line.item.Image,
			UnitPrice: line.item.Price,
			Quantity:  line.item.Quantity,
		}
	}

	session, err := s.processor.CreateSession(ctx, model.PaymentSessionRequest{
		Reference:     orderID.String(),
		CustomerEmail: email,
		Currency:      s.cfg.Currency,
		Total:         total,
		Lines:         paymentLines,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to create payment session")
		if errors.Is(err, model.ErrPaymentFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrPaymentFailed, err)
	}
	return session, nil
}

// expireSession cancels a session whose order was not recorded.
func (s *checkoutService) expireSession(ctx context.Context, sessionID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if err := s.processor.ExpireSession(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to expire orphaned payment session")
		return
	}
	s.logger.Warn().Str("session_id", sessionID).Msg("expired payment session after failed checkout")
}

// validateContact requires an authenticated identity or a complete guest contact.
func validateContact(identity *model.Identity, guest *model.GuestContact) error {
	if identity != nil && identity.ExternalID != "" {
		return nil
	}
	if guest == nil ||
		strings.TrimSpace(guest.FirstName) == "" ||
		strings.TrimSpace(guest.LastName) == "" ||
		!model.ValidEmail(model.NormaliseEmail(guest.Email)) {
		return model.ErrGuestContactRequired
	}
	return nil
}

// resolveUser finds the customer for identity, or upserts one by email.
// An external id is only linked through the identity's own email claim; a
// guest-supplied email never gains one.
func resolveUser(ctx context.Context, users repository.UserRepository, tx pgx.Tx, identity *model.Identity, guest *model.GuestContact) (*model.User, error) {
	candidate := &model.User{}
	if guest != nil {
		candidate.Email = guest.Email
		candidate.FirstName = strings.TrimSpace(guest.FirstName)
		candidate.LastName = strings.TrimSpace(guest.LastName)
	}

	if identity != nil && identity.ExternalID != "" {
		user, err := users.FindByExternalID(ctx, tx, identity.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve customer: %w", err)
		}
		if user != nil {
			return user, nil
		}

		if identity.Email != "" {
			candidate.Email = identity.Email
			if identity.FirstName != "" {
				candidate.FirstName = identity.FirstName
			}
			if identity.LastName != "" {
				candidate.LastName = identity.LastName
			}
			externalID := identity.ExternalID
			candidate.ExternalID = &externalID
		} else if err := validateContact(nil, guest); err != nil {
			return nil, err
		}
	}

	candidate.Email = model.NormaliseEmail(candidate.Email)
	if !model.ValidEmail(candidate.Email) {
		return nil, model.ErrGuestContactRequired
	}

	user, err := users.UpsertByEmail(ctx, tx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}
	return user, nil
}
