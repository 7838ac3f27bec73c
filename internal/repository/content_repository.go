package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const contentColumns = `id, key, title, body, image_url, active, sort_order, created_at, updated_at`

type contentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewContentRepository creates a new PostgreSQL-backed site content repository.
func NewContentRepository(pool *pgxpool.Pool, logger zerolog.Logger) ContentRepository {
	return &contentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "content").Logger(),
	}
}

func scanContent(row pgx.Row) (*model.ContentBlock, error) {
	var b model.ContentBlock
	if err := row.Scan(&b.ID, &b.Key, &b.Title, &b.Body, &b.ImageURL, &b.Active, &b.SortOrder, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *contentRepository) List(ctx context.Context) ([]model.ContentBlock, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+contentColumns+" FROM content_blocks ORDER BY sort_order, key")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query content blocks")
		return nil, fmt.Errorf("failed to query content blocks: %w", err)
	}
	defer rows.Close()

	blocks := []model.ContentBlock{}
	for rows.Next() {
		b, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content block: %w", err)
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

func (r *contentRepository) getOne(ctx context.Context, query string, arg any) (*model.ContentBlock, error) {
	b, err := scanContent(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query content block")
		return nil, fmt.Errorf("failed to query content block: %w", err)
	}
	return b, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ContentBlock, error) {
	return r.getOne(ctx, "SELECT "+contentColumns+" FROM content_blocks WHERE id = $1", id)
}

func (r *contentRepository) GetByKey(ctx context.Context, key string) (*model.ContentBlock, error) {
	return r.getOne(ctx, "SELECT "+contentColumns+" FROM content_blocks WHERE key = $1", key)
}

func (r *contentRepository) Create(ctx context.Context, block *model.ContentBlock) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO content_blocks (id, key, title, body, image_url, active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, block.ID, block.Key, block.Title, block.Body, block.ImageURL, block.Active, block.SortOrder).
		Scan(&block.CreatedAt, &block.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrContentKeyTaken
		}
		r.logger.Error().Err(err).Str("key", block.Key).Msg("failed to create content block")
		return fmt.Errorf("failed to create content block: %w", err)
	}
	return nil
}

func (r *contentRepository) Update(ctx context.Context, block *model.ContentBlock) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE content_blocks SET key = $2, title = $3, body = $4, image_url = $5, active = $6,
			sort_order = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, block.ID, block.Key, block.Title, block.Body, block.ImageURL, block.Active, block.SortOrder).
		Scan(&block.CreatedAt, &block.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrContentNotFound
		}
		if isUniqueViolation(err) {
			return model.ErrContentKeyTaken
		}
		r.logger.Error().Err(err).Str("content_id", block.ID.String()).Msg("failed to update content block")
		return fmt.Errorf("failed to update content block: %w", err)
	}
	return nil
}

func (r *contentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM content_blocks WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("content_id", id.String()).Msg("failed to delete content block")
		return fmt.Errorf("failed to delete content block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrContentNotFound
	}
	return nil
}
