package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	txr       *MockTransactor
	tx        *MockTx
	orders    *MockOrderRepository
	products  *MockProductRepository
	processor *MockProcessor
	notifier  *recordingNotifier
	service   OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		txr:       new(MockTransactor),
		tx:        new(MockTx),
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		processor: new(MockProcessor),
		notifier:  &recordingNotifier{},
	}
	f.service = NewOrderService(f.txr, f.orders, f.products, f.processor, f.notifier, zerolog.Nop())
	return f
}

func (f *orderFixture) assertExpectations(t *testing.T) {
	f.txr.AssertExpectations(t)
	f.tx.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.products.AssertExpectations(t)
	f.processor.AssertExpectations(t)
}

func testOrder(status model.OrderStatus, items ...model.OrderItem) *model.Order {
	id := uuid.New()
	for i := range items {
		items[i].OrderID = id
	}
	return &model.Order{
		ID:               id,
		Total:            decimal.NewFromInt(25),
		Currency:         "usd",
		Status:           status,
		PaymentSessionID: "cs_test",
		Items:            items,
	}
}

func TestOrderService_HandlePaymentNotification_InvalidSignature(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	payload := []byte(`{"id":"evt_1"}`)
	f.processor.On("ParseEvent", payload, "t=1,v1=bad").Return(nil, model.ErrInvalidSignature)

	err := f.service.HandlePaymentNotification(ctx, payload, "t=1,v1=bad")

	require.ErrorIs(t, err, model.ErrInvalidSignature)
	f.txr.AssertNotCalled(t, "BeginTx", mock.Anything)
	f.orders.AssertNotCalled(t, "RecordPaymentEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "TransitionBySession", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_HandlePaymentNotification_NoProcessor(t *testing.T) {
	f := newOrderFixture()
	f.service = NewOrderService(f.txr, f.orders, f.products, payment.NewDemo(), nil, zerolog.Nop())

	err := f.service.HandlePaymentNotification(context.Background(), []byte(`{}`), "sig")

	require.ErrorIs(t, err, model.ErrPaymentUnavailable)
	f.txr.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_HandlePaymentNotification_Completed(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	order := testOrder(model.OrderStatusPaid)

	event := &model.PaymentEvent{ID: "evt_1", Type: payment.EventSessionCompleted, Outcome: model.PaymentCompleted, SessionID: "cs_test"}
	f.processor.On("ParseEvent", []byte("payload"), "sig").Return(event, nil)
	f.txr.On("BeginTx", ctx).Return(f.tx, nil)
	f.orders.On("RecordPaymentEvent", ctx, f.tx, "evt_1", payment.EventSessionCompleted).Return(true, nil)
	f.orders.On("TransitionBySession", ctx, f.tx, "cs_test", model.OrderStatusPending, model.OrderStatusPaid).
		Return([]uuid.UUID{order.ID}, []model.OrderItem{}, nil)
	f.tx.On("Commit", ctx).Return(nil)
	f.orders.On("GetByID", ctx, order.ID).Return(order, nil)

	err := f.service.HandlePaymentNotification(ctx, []byte("payload"), "sig")

	require.NoError(t, err)
	f.assertExpectations(t)
	f.products.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything, mock.Anything)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OrderEventStatusChanged, events[0].Type)
	assert.Equal(t, model.OrderStatusPaid, events[0].Order.Status)
}

func TestOrderService_ApplyPaymentEvent_ReplayIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	event := &model.PaymentEvent{ID: "evt_1", Type: payment.EventSessionCompleted, Outcome: model.PaymentCompleted, SessionID: "cs_test"}
	f.txr.On("BeginTx", ctx).Return(f.tx, nil)
	f.orders.On("RecordPaymentEvent", ctx, f.tx, "evt_1", payment.EventSessionCompleted).Return(false, nil)
	f.tx.On("Rollback", ctx).Return(nil)

	err := f.service.ApplyPaymentEvent(ctx, event)

	require.NoError(t, err)
	f.assertExpectations(t)
	f.orders.AssertNotCalled(t, "TransitionBySession", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, f.tx.committed)
	assert.Empty(t, f.notifier.Events())
}

func TestOrderService_ApplyPaymentEvent_ExpiryRestoresStock(t *testing.T) {
	for _, outcome := range []model.PaymentOutcome{model.PaymentExpired, model.PaymentFailed} {
		t.Run(string(outcome), func(t *testing.T) {
			ctx := context.Background()
			f := newOrderFixture()

			order := testOrder(model.OrderStatusCancelled,
				model.OrderItem{ID: uuid.New(), ProductID: "p1", Quantity: 2},
				model.OrderItem{ID: uuid.New(), ProductID: "p2", Quantity: 1},
			)
			event := &model.PaymentEvent{ID: "evt_x", Type: "checkout.session.expired", Outcome: outcome, SessionID: "cs_test"}

			f.txr.On("BeginTx", ctx).Return(f.tx, nil)
			f.orders.On("RecordPaymentEvent", ctx, f.tx, "evt_x", "checkout.session.expired").Return(true, nil)
			f.orders.On("TransitionBySession", ctx, f.tx, "cs_test", model.OrderStatusPending, model.OrderStatusCancelled).
				Return([]uuid.UUID{order.ID}, order.Items, nil)
			f.products.On("ReleaseStock", ctx, f.tx, order.Items).Return(nil).Once()
			f.tx.On("Commit", ctx).Return(nil)
			f.orders.On("GetByID", ctx, order.ID).Return(order, nil)

			require.NoError(t, f.service.ApplyPaymentEvent(ctx, event))
			f.assertExpectations(t)
		})
	}
}

func TestOrderService_ApplyPaymentEvent_AlreadySettledSessionReleasesNothing(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	event := &model.PaymentEvent{ID: "evt_late", Type: "checkout.session.expired", Outcome: model.PaymentExpired, SessionID: "cs_paid"}
	f.txr.On("BeginTx", ctx).Return(f.tx, nil)
	f.orders.On("RecordPaymentEvent", ctx, f.tx, "evt_late", "checkout.session.expired").Return(true, nil)
	f.orders.On("TransitionBySession", ctx, f.tx, "cs_paid", model.OrderStatusPending, model.OrderStatusCancelled).
		Return(nil, nil, nil)
	f.tx.On("Commit", ctx).Return(nil)

	require.NoError(t, f.service.ApplyPaymentEvent(ctx, event))
	f.assertExpectations(t)
	f.products.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.Events())
}

func TestOrderService_ApplyPaymentEvent_Ignored(t *testing.T) {
	f := newOrderFixture()

	err := f.service.ApplyPaymentEvent(context.Background(), &model.PaymentEvent{
		ID: "evt_2", Type: "customer.created", Outcome: model.PaymentIgnored,
	})

	require.NoError(t, err)
	f.txr.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_ApplyPaymentEvent_TransitionErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	event := &model.PaymentEvent{ID: "evt_3", Type: payment.EventSessionCompleted, Outcome: model.PaymentCompleted, SessionID: "cs_test"}
	f.txr.On("BeginTx", ctx).Return(f.tx, nil)
	f.orders.On("RecordPaymentEvent", ctx, f.tx, "evt_3", payment.EventSessionCompleted).Return(true, nil)
	f.orders.On("TransitionBySession", ctx, f.tx, "cs_test", model.OrderStatusPending, model.OrderStatusPaid).
		Return(nil, nil, errors.New("deadlock detected"))
	f.tx.On("Rollback", ctx).Return(nil)

	err := f.service.ApplyPaymentEvent(ctx, event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
	assert.True(t, f.tx.rolledBack)
	f.assertExpectations(t)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name         string
		current      model.OrderStatus
		req          model.UpdateStatusRequest
		expectSet    bool
		expectStock  bool
		expectedErr  error
		expectStatus model.OrderStatus
	}{
		{
			name:         "pending to paid",
			current:      model.OrderStatusPending,
			req:          model.UpdateStatusRequest{Status: "paid"},
			expectSet:    true,
			expectStatus: model.OrderStatusPaid,
		},
		{
			name:         "paid to shipped",
			current:      model.OrderStatusPaid,
			req:          model.UpdateStatusRequest{Status: "SHIPPED"},
			expectSet:    true,
			expectStatus: model.OrderStatusShipped,
		},
		{
			name:         "paid to cancelled restores stock",
			current:      model.OrderStatusPaid,
			req:          model.UpdateStatusRequest{Status: "CANCELLED"},
			expectSet:    true,
			expectStock:  true,
			expectStatus: model.OrderStatusCancelled,
		},
		{
			name:         "same status is a no-op",
			current:      model.OrderStatusShipped,
			req:          model.UpdateStatusRequest{Status: "SHIPPED"},
			expectStatus: model.OrderStatusShipped,
		},
		{
			name:        "delivered is terminal",
			current:     model.OrderStatusDelivered,
			req:         model.UpdateStatusRequest{Status: "PENDING"},
			expectedErr: model.ErrIllegalTransition,
		},
		{
			name:        "pending cannot skip to shipped",
			current:     model.OrderStatusPending,
			req:         model.UpdateStatusRequest{Status: "SHIPPED"},
			expectedErr: model.ErrIllegalTransition,
		},
		{
			name:         "forced correction",
			current:      model.OrderStatusCancelled,
			req:          model.UpdateStatusRequest{Status: "PAID", Force: true},
			expectSet:    true,
			expectStatus: model.OrderStatusPaid,
		},
		{
			name:         "forced cancel of shipped order keeps stock",
			current:      model.OrderStatusShipped,
			req:          model.UpdateStatusRequest{Status: "CANCELLED", Force: true},
			expectSet:    true,
			expectStatus: model.OrderStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newOrderFixture()
			order := testOrder(tt.current, model.OrderItem{ID: uuid.New(), ProductID: "p1", Quantity: 2})

			f.txr.On("BeginTx", ctx).Return(f.tx, nil)
			f.orders.On("GetForUpdate", ctx, f.tx, order.ID).Return(order, nil)
			if tt.expectSet {
				f.orders.On("SetStatus", ctx, f.tx, order.ID, tt.current, tt.expectStatus).Return(true, nil)
				f.tx.On("Commit", ctx).Return(nil)
			} else {
				f.tx.On("Rollback", ctx).Return(nil)
			}
			if tt.expectStock {
				f.products.On("ReleaseStock", ctx, f.tx, order.Items).Return(nil)
			}

			updated, err := f.service.UpdateStatus(ctx, order.ID, &tt.req)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				f.orders.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectStatus, updated.Status)
			}
			if !tt.expectStock {
				f.products.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything, mock.Anything)
			}
			f.assertExpectations(t)

			if tt.expectSet {
				require.Len(t, f.notifier.Events(), 1)
			} else {
				assert.Empty(t, f.notifier.Events())
			}
		})
	}
}

func TestOrderService_UpdateStatus_UnknownStatusLeavesOrderUntouched(t *testing.T) {
	f := newOrderFixture()

	_, err := f.service.UpdateStatus(context.Background(), uuid.New(), &model.UpdateStatusRequest{Status: "SHIPPED_NOW"})

	require.ErrorIs(t, err, model.ErrInvalidStatus)
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.KindValidation, domainErr.Kind)
	f.txr.AssertNotCalled(t, "BeginTx", mock.Anything)
	f.orders.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	id := uuid.New()

	f.txr.On("BeginTx", ctx).Return(f.tx, nil)
	f.orders.On("GetForUpdate", ctx, f.tx, id).Return(nil, nil)
	f.tx.On("Rollback", ctx).Return(nil)

	_, err := f.service.UpdateStatus(ctx, id, &model.UpdateStatusRequest{Status: "PAID"})

	require.ErrorIs(t, err, model.ErrOrderNotFound)
	f.assertExpectations(t)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		f := newOrderFixture()
		order := testOrder(model.OrderStatusPending)
		f.orders.On("GetByID", ctx, order.ID).Return(order, nil)

		got, err := f.service.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order, got)
	})

	t.Run("not found", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("GetByID", ctx, id).Return(nil, nil)

		_, err := f.service.GetByID(ctx, id)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("GetByID", ctx, id).Return(nil, errors.New("db down"))

		_, err := f.service.GetByID(ctx, id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get order")
	})
}

func TestOrderService_GetBySession(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	order := testOrder(model.OrderStatusPending)
	f.orders.On("GetBySession", ctx, "cs_test").Return([]model.Order{*order}, nil)
	f.orders.On("GetBySession", ctx, "cs_none").Return([]model.Order{}, nil)

	orders, err := f.service.GetBySession(ctx, "cs_test")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = f.service.GetBySession(ctx, "cs_none")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	_, err = f.service.GetBySession(ctx, "")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderService_List_NormalisesPage(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	paid := model.OrderStatusPaid
	f.orders.On("List", ctx, model.OrderFilter{Status: &paid, Limit: 100, Offset: 0}).Return(nil, nil)

	orders, err := f.service.List(ctx, model.OrderFilter{Status: &paid, Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
	f.assertExpectations(t)
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	id := uuid.New()

	f.orders.On("Delete", ctx, id).Return(model.ErrOrderNotFound)

	assert.ErrorIs(t, f.service.Delete(ctx, id), model.ErrOrderNotFound)
}
