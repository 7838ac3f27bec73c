package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor starts database transactions that span several repositories.
type Transactor interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List returns one page of the catalogue narrowed by filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// ListAll returns the whole catalogue ordered by id.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs. Missing ids are simply absent.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error

	// Upsert inserts or replaces products in one batch and returns how many were written.
	Upsert(ctx context.Context, products []model.Product) (int, error)

	// InsertMissing creates products that do not exist yet within tx. Existing ids are left untouched.
	InsertMissing(ctx context.Context, tx pgx.Tx, products []model.Product) error

	// ReserveStock decrements stock by qty only if enough is available.
	// Returns false when the product is missing or short.
	ReserveStock(ctx context.Context, tx pgx.Tx, productID string, qty int) (bool, error)

	// ReleaseStock returns the quantities of items to stock within tx.
	ReleaseStock(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
}

// UserRepository defines the interface for customer data access operations.
type UserRepository interface {
	// FindByExternalID returns the user linked to an identity provider subject, or nil.
	FindByExternalID(ctx context.Context, tx pgx.Tx, externalID string) (*model.User, error)

	// UpsertByEmail returns the user with user.Email, creating it when absent.
	// An existing row gains user.ExternalID if it had none.
	UpsertByEmail(ctx context.Context, tx pgx.Tx, user *model.User) (*model.User, error)

	List(ctx context.Context, limit, offset int) ([]model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate reads an order with its items and locks the row until tx ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	GetBySession(ctx context.Context, sessionID string) ([]model.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// SetStatus moves the order to next only if it is still in from.
	SetStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, next model.OrderStatus) (bool, error)

	// TransitionBySession moves every order of a payment session from one status to another
	// and returns the items of the orders that changed.
	TransitionBySession(ctx context.Context, tx pgx.Tx, sessionID string, from, next model.OrderStatus) ([]uuid.UUID, []model.OrderItem, error)

	// RecordPaymentEvent stores a processor event id. Returns false when it was already recorded.
	RecordPaymentEvent(ctx context.Context, tx pgx.Tx, eventID, eventType string) (bool, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	List(ctx context.Context, activeOnly bool) ([]model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContentRepository defines the interface for site content data access operations.
type ContentRepository interface {
	List(ctx context.Context) ([]model.ContentBlock, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ContentBlock, error)
	GetByKey(ctx context.Context, key string) (*model.ContentBlock, error)
	Create(ctx context.Context, block *model.ContentBlock) error
	Update(ctx context.Context, block *model.ContentBlock) error
	Delete(ctx context.Context, id uuid.UUID) error
}
