package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the storefront catalogue.
// InStock is derived by the database from Stock and never written directly.
type Product struct {
	ID                 string           `json:"id" db:"id"`
	Name               string           `json:"name" db:"name"`
	Description        string           `json:"description" db:"description"`
	Image              string           `json:"image" db:"image"`
	Price              decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice      *decimal.Decimal `json:"originalPrice,omitempty" db:"original_price"`
	DiscountPercentage *int             `json:"discountPercentage,omitempty" db:"discount_percentage"`
	Stock              int              `json:"stock" db:"stock"`
	InStock            bool             `json:"inStock" db:"in_stock"`
	Category           string           `json:"category" db:"category"`
	Tags               []string         `json:"tags" db:"tags"`
	Featured           bool             `json:"featured" db:"featured"`
	IsNew              bool             `json:"isNew" db:"is_new"`
	Trending           bool             `json:"trending" db:"trending"`
	TopRated           bool             `json:"topRated" db:"top_rated"`
	FlashDeal          bool             `json:"flashDeal" db:"flash_deal"`
	CreatedAt          time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time        `json:"updatedAt" db:"updated_at"`
}

// ProductSort enumerates catalogue orderings.
type ProductSort string

const (
	SortByName      ProductSort = "name"
	SortByPriceAsc  ProductSort = "price_asc"
	SortByPriceDesc ProductSort = "price_desc"
	SortByNewest    ProductSort = "newest"
)

// ProductFilter narrows a catalogue listing. Nil flag pointers mean "don't care".
type ProductFilter struct {
	Category    string
	Tag         string
	Query       string
	InStockOnly bool
	Featured    *bool
	IsNew       *bool
	Trending    *bool
	TopRated    *bool
	FlashDeal   *bool
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Sort        ProductSort
	Limit       int
	Offset      int
}

// ProductRequest is the admin payload for creating or replacing a product.
type ProductRequest struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name" binding:"required"`
	Description        string           `json:"description"`
	Image              string           `json:"image"`
	Price              decimal.Decimal  `json:"price"`
	OriginalPrice      *decimal.Decimal `json:"originalPrice"`
	DiscountPercentage *int             `json:"discountPercentage"`
	Stock              int              `json:"stock"`
	Category           string           `json:"category"`
	Tags               []string         `json:"tags"`
	Featured           bool             `json:"featured"`
	IsNew              bool             `json:"isNew"`
	Trending           bool             `json:"trending"`
	TopRated           bool             `json:"topRated"`
	FlashDeal          bool             `json:"flashDeal"`
}

// ToProduct copies the request into a Product with the given id.
func (r *ProductRequest) ToProduct(id string) *Product {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Product{
		ID:                 id,
		Name:               r.Name,
		Description:        r.Description,
		Image:              r.Image,
		Price:              r.Price,
		OriginalPrice:      r.OriginalPrice,
		DiscountPercentage: r.DiscountPercentage,
		Stock:              r.Stock,
		InStock:            r.Stock > 0,
		Category:           r.Category,
		Tags:               tags,
		Featured:           r.Featured,
		IsNew:              r.IsNew,
		Trending:           r.Trending,
		TopRated:           r.TopRated,
		FlashDeal:          r.FlashDeal,
	}
}

// ValidPrice reports whether d is a non-negative amount in whole cents.
func ValidPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2))
}

// Validate checks the field ranges shared by admin writes and feed imports.
func (p *Product) Validate() error {
	if p.Name == "" {
		return NewDomainError(KindValidation, ErrCodeInvalidProductField, "product name is required")
	}
	if !ValidPrice(p.Price) {
		return ErrInvalidPrice
	}
	if p.OriginalPrice != nil && !ValidPrice(*p.OriginalPrice) {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return NewDomainError(KindValidation, ErrCodeInvalidProductField, "stock must not be negative")
	}
	if p.DiscountPercentage != nil && (*p.DiscountPercentage < 0 || *p.DiscountPercentage > 100) {
		return NewDomainError(KindValidation, ErrCodeInvalidProductField, "discount percentage must be between 0 and 100")
	}
	return nil
}
