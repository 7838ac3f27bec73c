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

// contentService implements ContentService.
type contentService struct {
	contentRepo repository.ContentRepository
	logger      zerolog.Logger
}

// NewContentService creates a new content service.
func NewContentService(contentRepo repository.ContentRepository, logger zerolog.Logger) ContentService {
	return &contentService{
		contentRepo: contentRepo,
		logger:      logger.With().Str("service", "content").Logger(),
	}
}

func (s *contentService) List(ctx context.Context) ([]model.ContentBlock, error) {
	blocks, err := s.contentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return blocks, nil
}

func (s *contentService) GetByID(ctx context.Context, id uuid.UUID) (*model.ContentBlock, error) {
	block, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	if block == nil {
		return nil, model.ErrContentNotFound
	}
	return block, nil
}

// GetPublished hides inactive blocks as if they did not exist.
func (s *contentService) GetPublished(ctx context.Context, key string) (*model.ContentBlock, error) {
	block, err := s.contentRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	if block == nil || !block.Active {
		return nil, model.ErrContentNotFound
	}
	return block, nil
}

func (s *contentService) Create(ctx context.Context, req *model.ContentRequest) (*model.ContentBlock, error) {
	block, err := contentFromRequest(uuid.New(), req)
	if err != nil {
		return nil, err
	}
	if err := s.contentRepo.Create(ctx, block); err != nil {
		return nil, err
	}
	s.logger.Info().Str("key", block.Key).Msg("content block created")
	return block, nil
}

func (s *contentService) Update(ctx context.Context, id uuid.UUID, req *model.ContentRequest) (*model.ContentBlock, error) {
	block, err := contentFromRequest(id, req)
	if err != nil {
		return nil, err
	}
	if err := s.contentRepo.Update(ctx, block); err != nil {
		return nil, err
	}
	s.logger.Info().Str("key", block.Key).Msg("content block updated")
	return block, nil
}

func (s *contentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.contentRepo.Delete(ctx, id)
}

func contentFromRequest(id uuid.UUID, req *model.ContentRequest) (*model.ContentBlock, error) {
	key := strings.TrimSpace(req.Key)
	title := strings.TrimSpace(req.Title)
	if key == "" || title == "" {
		return nil, model.NewValidationError("content key and title are required")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return &model.ContentBlock{
		ID:        id,
		Key:       key,
		Title:     title,
		Body:      req.Body,
		ImageURL:  strings.TrimSpace(req.ImageURL),
		Active:    active,
		SortOrder: req.SortOrder,
	}, nil
}
