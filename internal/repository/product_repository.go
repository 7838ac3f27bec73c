package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

const productColumns = `id, name, description, image, price, original_price, discount_percentage,
	stock, in_stock, category, tags, featured, is_new, trending, top_rated, flash_deal,
	created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Image, &p.Price, &p.OriginalPrice, &p.DiscountPercentage,
		&p.Stock, &p.InStock, &p.Category, &p.Tags, &p.Featured, &p.IsNew, &p.Trending, &p.TopRated, &p.FlashDeal,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// buildProductQuery turns a filter into a SELECT with positional arguments.
func buildProductQuery(filter model.ProductFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if filter.Tag != "" {
		where = append(where, arg(filter.Tag)+" = ANY(tags)")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "name ILIKE "+arg("%"+q+"%"))
	}
	if filter.InStockOnly {
		where = append(where, "in_stock")
	}
	flags := []struct {
		column string
		value  *bool
	}{
		{"featured", filter.Featured},
		{"is_new", filter.IsNew},
		{"trending", filter.Trending},
		{"top_rated", filter.TopRated},
		{"flash_deal", filter.FlashDeal},
	}
	for _, f := range flags {
		if f.value != nil {
			where = append(where, f.column+" = "+arg(*f.value))
		}
	}
	if filter.MinPrice != nil {
		where = append(where, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		where = append(where, "price <= "+arg(*filter.MaxPrice))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(productColumns)
	sb.WriteString(" FROM products")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	switch filter.Sort {
	case model.SortByPriceAsc:
		sb.WriteString(" ORDER BY price ASC, name")
	case model.SortByPriceDesc:
		sb.WriteString(" ORDER BY price DESC, name")
	case model.SortByNewest:
		sb.WriteString(" ORDER BY created_at DESC, id")
	default:
		sb.WriteString(" ORDER BY name, id")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultProductLimit
	}
	if limit > maxProductLimit {
		limit = maxProductLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	sb.WriteString(" LIMIT " + arg(limit) + " OFFSET " + arg(offset))

	return sb.String(), args
}

// List returns one page of the catalogue narrowed by filter.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query, args := buildProductQuery(filter)
	return r.queryProducts(ctx, query, args...)
}

// ListAll returns the whole catalogue ordered by id.
func (r *productRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	return r.queryProducts(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1) ORDER BY id", ids)
}

// Create inserts a new product. A duplicate id yields ErrProductExists.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, image, price, original_price, discount_percentage,
			stock, category, tags, featured, is_new, trending, top_rated, flash_deal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING in_stock, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, productArgs(product)...).
		Scan(&product.InStock, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrProductExists
		}
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID).Msg("product created")
	return nil
}

// Update replaces every editable field of an existing product.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products SET
			name = $2, description = $3, image = $4, price = $5, original_price = $6,
			discount_percentage = $7, stock = $8, category = $9, tags = $10, featured = $11,
			is_new = $12, trending = $13, top_rated = $14, flash_deal = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING in_stock, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, productArgs(product)...).
		Scan(&product.InStock, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewProductNotFoundError(product.ID)
		}
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product. Products referenced by order items cannot be removed.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductInUse
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewProductNotFoundError(id)
	}
	return nil
}

// Upsert inserts or replaces products in one batch.
func (r *productRepository) Upsert(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO products (id, name, description, image, price, original_price, discount_percentage,
			stock, category, tags, featured, is_new, trending, top_rated, flash_deal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, image = EXCLUDED.image,
			price = EXCLUDED.price, original_price = EXCLUDED.original_price,
			discount_percentage = EXCLUDED.discount_percentage, stock = EXCLUDED.stock,
			category = EXCLUDED.category, tags = EXCLUDED.tags, featured = EXCLUDED.featured,
			is_new = EXCLUDED.is_new, trending = EXCLUDED.trending, top_rated = EXCLUDED.top_rated,
			flash_deal = EXCLUDED.flash_deal, updated_at = NOW()
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i := range products {
		batch.Queue(query, productArgs(&products[i])...)
	}
	if err := execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to upsert products")
		return 0, fmt.Errorf("failed to upsert products: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit product upsert: %w", err)
	}

	r.logger.Debug().Int("count", len(products)).Msg("products upserted")
	return len(products), nil
}

// InsertMissing creates the given products unless a row with the same id exists.
func (r *productRepository) InsertMissing(ctx context.Context, tx pgx.Tx, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	query := `
		INSERT INTO products (id, name, description, image, price, original_price, discount_percentage,
			stock, category, tags, featured, is_new, trending, top_rated, flash_deal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for i := range products {
		batch.Queue(query, productArgs(&products[i])...)
	}
	if err := execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to provision products")
		return fmt.Errorf("failed to provision products: %w", err)
	}

	r.logger.Info().Int("count", len(products)).Msg("provisioned missing products")
	return nil
}

// ReserveStock decrements stock atomically, refusing to go below zero.
func (r *productRepository) ReserveStock(ctx context.Context, tx pgx.Tx, productID string, qty int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, productID, qty)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to reserve stock")
		return false, fmt.Errorf("failed to reserve stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseStock adds the item quantities back to their products.
func (r *productRepository) ReleaseStock(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
			item.ProductID, item.Quantity)
	}
	if err := execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().Err(err).Int("count", len(items)).Msg("failed to release stock")
		return fmt.Errorf("failed to release stock: %w", err)
	}
	return nil
}

func productArgs(p *model.Product) []any {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		p.ID, p.Name, p.Description, p.Image, p.Price, p.OriginalPrice, p.DiscountPercentage,
		p.Stock, p.Category, tags, p.Featured, p.IsNew, p.Trending, p.TopRated, p.FlashDeal,
	}
}
