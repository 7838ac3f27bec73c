package catalogfeed

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// DefaultBatchSize is how many products are upserted per round trip.
const DefaultBatchSize = 500

// ProductWriter persists imported products.
type ProductWriter interface {
	Upsert(ctx context.Context, products []model.Product) (int, error)
}

// Importer loads a feed and writes its products to the catalogue.
type Importer struct {
	loader    Loader
	writer    ProductWriter
	batchSize int
	logger    zerolog.Logger
}

// NewImporter creates an Importer. A non-positive batchSize uses DefaultBatchSize.
func NewImporter(loader Loader, writer ProductWriter, batchSize int, logger zerolog.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{
		loader:    loader,
		writer:    writer,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "catalog-import").Logger(),
	}
}

// Import loads path and upserts every product, returning how many were written.
// Batches already written stay written if a later batch fails.
func (i *Importer) Import(ctx context.Context, path string) (int, error) {
	start := time.Now()

	products, err := i.loader.Load(ctx, path)
	if err != nil {
		return 0, err
	}

	written := 0
	for lo := 0; lo < len(products); lo += i.batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		hi := min(lo+i.batchSize, len(products))
		n, err := i.writer.Upsert(ctx, products[lo:hi])
		if err != nil {
			i.logger.Error().Err(err).Int("batch_start", lo).Msg("failed to write batch")
			return written, fmt.Errorf("failed to import products %d-%d: %w", lo, hi-1, err)
		}
		written += n
	}

	i.logger.Info().
		Str("path", path).
		Int("products", written).
		Dur("duration", time.Since(start)).
		Msg("catalogue import finished")

	return written, nil
}
