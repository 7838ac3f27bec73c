package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	txr         repository.Transactor
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	processor   payment.Processor
	notifier    OrderNotifier
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	txr repository.Transactor,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	processor payment.Processor,
	notifier OrderNotifier,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		txr:         txr,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		processor:   processor,
		notifier:    notifierOrNop(notifier),
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// HandlePaymentNotification verifies and applies a processor notification.
// Nothing is read or written when verification fails.
func (s *orderService) HandlePaymentNotification(ctx context.Context, payload []byte, signature string) error {
	event, err := s.processor.ParseEvent(payload, signature)
	if err != nil {
		s.logger.Warn().Err(err).Msg("payment notification rejected")
		return err
	}
	return s.ApplyPaymentEvent(ctx, event)
}

// ApplyPaymentEvent settles the orders of the event's session. Replayed events are no-ops.
func (s *orderService) ApplyPaymentEvent(ctx context.Context, event *model.PaymentEvent) error {
	log := s.logger.With().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Str("session_id", event.SessionID).
		Logger()

	if event.Outcome == model.PaymentIgnored || event.SessionID == "" {
		log.Debug().Msg("payment event ignored")
		return nil
	}

	tx, err := s.txr.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply payment event: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	fresh, err := s.orderRepo.RecordPaymentEvent(ctx, tx, event.ID, event.Type)
	if err != nil {
		return fmt.Errorf("failed to apply payment event: %w", err)
	}
	if !fresh {
		log.Info().Msg("payment event already processed")
		return nil
	}

	var changed []uuid.UUID
	switch event.Outcome {
	case model.PaymentCompleted:
		changed, _, err = s.orderRepo.TransitionBySession(ctx, tx, event.SessionID,
			model.OrderStatusPending, model.OrderStatusPaid)
		if err != nil {
			return fmt.Errorf("failed to mark orders paid: %w", err)
		}

	case model.PaymentExpired, model.PaymentFailed:
		var items []model.OrderItem
		changed, items, err = s.orderRepo.TransitionBySession(ctx, tx, event.SessionID,
			model.OrderStatusPending, model.OrderStatusCancelled)
		if err != nil {
			return fmt.Errorf("failed to cancel orders: %w", err)
		}
		if len(items) > 0 {
			if err := s.productRepo.ReleaseStock(ctx, tx, items); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to apply payment event: %w", err)
	}
	committed = true

	log.Info().
		Str("outcome", string(event.Outcome)).
		Int("orders", len(changed)).
		Msg("payment event applied")

	s.publishChanged(ctx, changed)
	return nil
}

// UpdateStatus moves an order to the requested status under a row lock.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateStatusRequest) (*model.Order, error) {
	next, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		s.logger.Warn().Str("order_id", id.String()).Str("status", req.Status).Msg("invalid order status")
		return nil, err
	}

	tx, err := s.txr.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	current := order.Status
	if current == next {
		return order, nil
	}

	if !current.CanTransitionTo(next) {
		if !req.Force {
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("from", string(current)).
				Str("to", string(next)).
				Msg("illegal status transition")
			return nil, model.NewDomainError(model.KindConflict, model.ErrCodeIllegalTransition,
				fmt.Sprintf("cannot move order from %s to %s", current, next))
		}
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(current)).
			Str("to", string(next)).
			Msg("forcing status transition")
	}

	ok, err := s.orderRepo.SetStatus(ctx, tx, id, current, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if !ok {
		return nil, model.ErrIllegalTransition
	}

	if next == model.OrderStatusCancelled && current.ReleasesStock() {
		if err := s.releaseOrderStock(ctx, tx, order); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	committed = true

	order.Status = next
	order.UpdatedAt = time.Now().UTC()

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(current)).
		Str("to", string(next)).
		Bool("forced", req.Force).
		Msg("order status updated")

	s.notifier.Publish(model.OrderEvent{Type: model.OrderEventStatusChanged, Order: order})
	return order, nil
}

func (s *orderService) releaseOrderStock(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if err := s.productRepo.ReleaseStock(ctx, tx, order.Items); err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	return nil
}

// publishChanged announces orders changed by a payment event. Lookup failures are only logged.
func (s *orderService) publishChanged(ctx context.Context, ids []uuid.UUID) {
	for _, id := range ids {
		order, err := s.orderRepo.GetByID(ctx, id)
		if err != nil || order == nil {
			s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("changed order not announced")
			continue
		}
		s.notifier.Publish(model.OrderEvent{Type: model.OrderEventStatusChanged, Order: order})
	}
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// GetBySession returns the orders of a payment session for the confirmation page.
func (s *orderService) GetBySession(ctx context.Context, sessionID string) ([]model.Order, error) {
	if sessionID == "" {
		return nil, model.ErrOrderNotFound
	}

	orders, err := s.orderRepo.GetBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get orders by session")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, model.ErrOrderNotFound
	}
	return orders, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list customer orders")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	filter.Limit, filter.Offset = normalisePage(filter.Limit, filter.Offset)

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// Delete removes an order and its items. Stock is not restored.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}
