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

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	category, err := categoryFromRequest(uuid.New(), req)
	if err != nil {
		s.logger.Warn().Err(err).Msg("invalid category")
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		s.logger.Warn().Err(err).Str("slug", category.Slug).Msg("category not created")
		return nil, err
	}

	s.logger.Info().Str("slug", category.Slug).Msg("category created")
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	category, err := categoryFromRequest(id, req)
	if err != nil {
		s.logger.Warn().Err(err).Str("category_id", id.String()).Msg("invalid category")
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Str("slug", category.Slug).Msg("category updated")
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

// categoryFromRequest derives the slug from the name when absent and applies the default colour.
func categoryFromRequest(id uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.NewValidationError("category name is required")
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = model.Slugify(name)
	}
	if !model.ValidSlug(slug) {
		return nil, model.NewValidationError("slug must be lower-case words separated by hyphens")
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = model.DefaultCategoryColor
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return &model.Category{
		ID:        id,
		Slug:      slug,
		Name:      name,
		Color:     color,
		Active:    active,
		SortOrder: req.SortOrder,
	}, nil
}
