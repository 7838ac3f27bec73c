package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// accountService implements AccountService.
type accountService struct {
	txr       repository.Transactor
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	txr repository.Transactor,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	logger zerolog.Logger,
) AccountService {
	return &accountService{
		txr:       txr,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "account").Logger(),
	}
}

// Sync returns the customer for identity, creating or linking one by email.
func (s *accountService) Sync(ctx context.Context, identity *model.Identity) (*model.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, model.ErrUnauthorised
	}

	tx, err := s.txr.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sync account: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	user, err := resolveUser(ctx, s.userRepo, tx, identity, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("external_id", identity.ExternalID).Msg("account sync failed")
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to sync account: %w", err)
	}
	committed = true

	s.logger.Debug().
		Str("external_id", identity.ExternalID).
		Str("user_id", user.ID.String()).
		Msg("account synced")

	return user, nil
}

// Orders lists the identity's orders. An identity with no customer record has none.
func (s *accountService) Orders(ctx context.Context, identity *model.Identity) ([]model.Order, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, model.ErrUnauthorised
	}

	tx, err := s.txr.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	user, err := s.userRepo.FindByExternalID(ctx, tx, identity.ExternalID)
	if rbErr := tx.Rollback(ctx); rbErr != nil {
		s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	if user == nil {
		return []model.Order{}, nil
	}

	orders, err := s.orderRepo.ListForUser(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to list account orders")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
