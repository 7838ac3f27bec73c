package catalogfeed

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// WriteFeed writes products to w in the format Load reads.
func WriteFeed(w io.Writer, products []model.ProductRequest) error {
	gzipWriter := gzip.NewWriter(w)
	enc := json.NewEncoder(gzipWriter)

	for i := range products {
		if err := enc.Encode(&products[i]); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to write product %q: %w", products[i].ID, err)
		}
	}

	return gzipWriter.Close()
}

// WriteFeedFile creates path and writes products to it.
func WriteFeedFile(path string, products []model.ProductRequest) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteFeed(file, products); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SampleProducts is a small demo catalogue for local development.
func SampleProducts() []model.ProductRequest {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	original := price("129.00")
	discount := 30

	return []model.ProductRequest{
		{
			ID: "wireless-headphones", Name: "Wireless Headphones", Category: "audio",
			Description: "Over-ear headphones with active noise cancelling.",
			Image:       "/images/wireless-headphones.jpg",
			Price:       price("89.90"), OriginalPrice: &original, DiscountPercentage: &discount,
			Stock: 25, Tags: []string{"audio", "bluetooth"}, Featured: true, FlashDeal: true,
		},
		{
			ID: "ceramic-mug", Name: "Ceramic Mug", Category: "kitchen",
			Description: "Stoneware mug, 350 ml.",
			Image:       "/images/ceramic-mug.jpg",
			Price:       price("12.50"), Stock: 120, Tags: []string{"kitchen"}, IsNew: true,
		},
		{
			ID: "desk-lamp", Name: "LED Desk Lamp", Category: "home",
			Description: "Dimmable lamp with USB charging port.",
			Image:       "/images/desk-lamp.jpg",
			Price:       price("34.00"), Stock: 40, Tags: []string{"home", "lighting"}, Trending: true,
		},
		{
			ID: "running-shoes", Name: "Running Shoes", Category: "sport",
			Description: "Lightweight trainers for road running.",
			Image:       "/images/running-shoes.jpg",
			Price:       price("74.99"), Stock: 0, Tags: []string{"sport", "shoes"}, TopRated: true,
		},
		{
			ID: "green-tea", Name: "Sencha Green Tea", Category: "kitchen",
			Description: "Loose-leaf green tea, 100 g.",
			Image:       "/images/green-tea.jpg",
			Price:       price("8.25"), Stock: 300, Tags: []string{"kitchen", "tea"},
		},
	}
}
