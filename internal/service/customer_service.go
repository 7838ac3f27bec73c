package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// customerService implements CustomerService.
type customerService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(userRepo repository.UserRepository, logger zerolog.Logger) CustomerService {
	return &customerService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "customer").Logger(),
	}
}

func (s *customerService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	limit, offset = normalisePage(limit, offset)
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	return users, nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if user == nil {
		return nil, model.ErrCustomerNotFound
	}
	return user, nil
}

func (s *customerService) Create(ctx context.Context, req *model.CustomerRequest) (*model.User, error) {
	user, err := customerFromRequest(uuid.New(), req)
	if err != nil {
		s.logger.Warn().Err(err).Msg("invalid customer")
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("customer created")
	return user, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req *model.CustomerRequest) (*model.User, error) {
	user, err := customerFromRequest(id, req)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", id.String()).Msg("invalid customer")
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id.String()).Msg("customer updated")
	return user, nil
}

// Delete removes a customer. Their orders are kept without an owner.
func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id.String()).Msg("customer deleted")
	return nil
}

func customerFromRequest(id uuid.UUID, req *model.CustomerRequest) (*model.User, error) {
	email := model.NormaliseEmail(req.Email)
	if email == "" {
		return nil, model.NewValidationError("email is required")
	}
	if !model.ValidEmail(email) {
		return nil, model.NewValidationError("email is not a valid address")
	}

	var externalID *string
	if req.ExternalID != nil && strings.TrimSpace(*req.ExternalID) != "" {
		ext := strings.TrimSpace(*req.ExternalID)
		externalID = &ext
	}

	return &model.User{
		ID:         id,
		Email:      email,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		ExternalID: externalID,
	}, nil
}
