package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for the catalogue.
type ProductService interface {
	// List returns one page of the catalogue narrowed by filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// ListAll returns every product, for exports.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

// CheckoutService turns a cart into a pending order and a payment session.
type CheckoutService interface {
	// Checkout reserves stock, records the order and opens a payment session.
	// identity is nil for guest checkouts.
	Checkout(ctx context.Context, identity *model.Identity, req *model.CheckoutRequest) (*model.CheckoutResult, error)
}

// OrderService defines operations for order management and payment reconciliation.
type OrderService interface {
	// HandlePaymentNotification verifies a processor notification and applies it.
	HandlePaymentNotification(ctx context.Context, payload []byte, signature string) error

	// ApplyPaymentEvent applies a verified payment event exactly once.
	ApplyPaymentEvent(ctx context.Context, event *model.PaymentEvent) error

	// UpdateStatus changes an order's status, enforcing the lifecycle unless forced.
	UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateStatusRequest) (*model.Order, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetBySession(ctx context.Context, sessionID string) ([]model.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AccountService links identity provider users to customer records.
type AccountService interface {
	// Sync resolves or creates the customer for identity.
	Sync(ctx context.Context, identity *model.Identity) (*model.User, error)

	// Orders lists the orders of the customer linked to identity.
	Orders(ctx context.Context, identity *model.Identity) ([]model.Order, error)
}

// CustomerService defines admin operations on customers.
type CustomerService interface {
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, req *model.CustomerRequest) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, req *model.CustomerRequest) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryService defines operations on catalogue categories.
type CategoryService interface {
	// List returns categories ordered for display. Inactive ones are included only when activeOnly is false.
	List(ctx context.Context, activeOnly bool) ([]model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContentService defines operations on site content blocks.
type ContentService interface {
	List(ctx context.Context) ([]model.ContentBlock, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ContentBlock, error)

	// GetPublished returns the active block for key.
	GetPublished(ctx context.Context, key string) (*model.ContentBlock, error)

	Create(ctx context.Context, req *model.ContentRequest) (*model.ContentBlock, error)
	Update(ctx context.Context, id uuid.UUID, req *model.ContentRequest) (*model.ContentBlock, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderNotifier receives order events after they are committed.
type OrderNotifier interface {
	Publish(event model.OrderEvent)
}

type nopNotifier struct{}

func (nopNotifier) Publish(model.OrderEvent) {}

func notifierOrNop(n OrderNotifier) OrderNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalisePage applies the default and maximum page size.
func normalisePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
