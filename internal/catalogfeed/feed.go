// Package catalogfeed imports products from gzip-compressed JSON-lines feeds.
package catalogfeed

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/model"
)

// Loader reads a product feed.
type Loader interface {
	// Load reads a gzipped feed and returns its products in file order.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// cancelCheckInterval is how many lines are read between context checks.
const cancelCheckInterval = 10_000

// LineError reports a feed line that could not be turned into a product.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// parseFeed decompresses r and decodes one product per non-blank line.
func parseFeed(ctx context.Context, r io.Reader) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		products []model.Product
		seen     = make(map[string]int)
		lineNo   int
	)
	for scanner.Scan() {
		lineNo++
		if lineNo%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		product, err := decodeLine(line)
		if err != nil {
			return nil, &LineError{Line: lineNo, Err: err}
		}

		// A later line for the same id replaces the earlier one.
		if idx, ok := seen[product.ID]; ok {
			products[idx] = *product
			continue
		}
		seen[product.ID] = len(products)
		products = append(products, *product)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading feed: %w", err)
	}

	return products, nil
}

func decodeLine(line string) (*model.Product, error) {
	var req model.ProductRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return nil, model.NewDomainError(model.KindValidation, model.ErrCodeInvalidFeedLine,
			fmt.Sprintf("malformed product: %v", err))
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, model.NewDomainError(model.KindValidation, model.ErrCodeInvalidFeedLine, "product id is required")
	}

	product := req.ToProduct(id)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}
