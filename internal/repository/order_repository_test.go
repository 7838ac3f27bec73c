package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(sessionID string, userID *uuid.UUID) *model.Order {
	now := time.Now().UTC()
	return &model.Order{
		ID:               uuid.New(),
		UserID:           userID,
		Currency:         "usd",
		Status:           model.OrderStatusPending,
		PaymentSessionID: sessionID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// createOrder writes order and items in one transaction and sets the total from the items.
func createOrder(t *testing.T, pool *pgxpool.Pool, repo OrderRepository, order *model.Order, items ...model.OrderItem) {
	t.Helper()
	ctx := context.Background()

	total := decimal.Zero
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = order.ID
		total = total.Add(items[i].LineTotal())
	}
	order.Total = total

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	products := NewProductRepository(pool, zerolog.Nop())
	repo := NewOrderRepository(pool, zerolog.Nop())
	seedProducts(t, products, testProduct("p1", "Lamp", "10.00", 5), testProduct("p2", "Rug", "5.00", 5))

	order := newTestOrder("sess_1", nil)
	createOrder(t, pool, repo, order,
		model.OrderItem{ProductID: "p1", ProductName: "Lamp", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		model.OrderItem{ProductID: "p2", ProductName: "Rug", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
	)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.True(t, decimal.RequireFromString("25.00").Equal(got.Total))
	assert.Len(t, got.Items, 2)
	assert.Nil(t, got.UserID)

	bySession, err := repo.GetBySession(ctx, "sess_1")
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Len(t, bySession[0].Items, 2)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepository_CreateOrderItemsRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())

	order := newTestOrder("sess_bad", nil)
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))

	err = repo.CreateOrderItems(ctx, tx, []model.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: "unknown", ProductName: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
	})
	require.Error(t, err)
	require.NoError(t, tx.Rollback(ctx))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrderRepository_StatusTransitions(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	products := NewProductRepository(pool, zerolog.Nop())
	repo := NewOrderRepository(pool, zerolog.Nop())
	seedProducts(t, products, testProduct("p1", "Lamp", "10.00", 5))

	first := newTestOrder("sess_multi", nil)
	second := newTestOrder("sess_multi", nil)
	createOrder(t, pool, repo, first, model.OrderItem{ProductID: "p1", ProductName: "Lamp", Quantity: 1, UnitPrice: decimal.NewFromInt(10)})
	createOrder(t, pool, repo, second, model.OrderItem{ProductID: "p1", ProductName: "Lamp", Quantity: 2, UnitPrice: decimal.NewFromInt(10)})

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	ids, items, err := repo.TransitionBySession(ctx, tx, "sess_multi", model.OrderStatusPending, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Len(t, items, 2)

	ids, _, err = repo.TransitionBySession(ctx, tx, "sess_multi", model.OrderStatusPending, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Empty(t, ids, "second transition must not match already-cancelled orders")
	require.NoError(t, tx.Commit(ctx))

	third := newTestOrder("sess_single", nil)
	createOrder(t, pool, repo, third, model.OrderItem{ProductID: "p1", ProductName: "Lamp", Quantity: 1, UnitPrice: decimal.NewFromInt(10)})

	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	locked, err := repo.GetForUpdate(ctx, tx, third.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.Len(t, locked.Items, 1)

	ok, err := repo.SetStatus(ctx, tx, third.ID, model.OrderStatusPaid, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.False(t, ok, "compare-and-set must fail on stale status")

	ok, err = repo.SetStatus(ctx, tx, third.ID, model.OrderStatusPending, model.OrderStatusPaid)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, tx.Commit(ctx))

	paid := model.OrderStatusPaid
	list, err := repo.List(ctx, model.OrderFilter{Status: &paid, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, third.ID, list[0].ID)

	all, err := repo.List(ctx, model.OrderFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOrderRepository_RecordPaymentEvent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	fresh, err := repo.RecordPaymentEvent(ctx, tx, "evt_1", "checkout.session.completed")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = repo.RecordPaymentEvent(ctx, tx, "evt_1", "checkout.session.completed")
	require.NoError(t, err)
	assert.False(t, fresh)
}

func TestOrderRepository_UserLinkAndDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	products := NewProductRepository(pool, zerolog.Nop())
	users := NewUserRepository(pool, zerolog.Nop())
	repo := NewOrderRepository(pool, zerolog.Nop())
	seedProducts(t, products, testProduct("p1", "Lamp", "10.00", 5))

	user := &model.User{ID: uuid.New(), Email: "ada@example.com"}
	require.NoError(t, users.Create(ctx, user))

	order := newTestOrder("sess_user", &user.ID)
	createOrder(t, pool, repo, order, model.OrderItem{ProductID: "p1", ProductName: "Lamp", Quantity: 1, UnitPrice: decimal.NewFromInt(10)})

	mine, err := repo.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, users.Delete(ctx, user.ID))
	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.UserID, "deleting a customer detaches their orders")

	require.NoError(t, repo.Delete(ctx, order.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, order.ID), model.ErrOrderNotFound))

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM order_items WHERE order_id = $1", order.ID).Scan(&count))
	assert.Zero(t, count)
}
