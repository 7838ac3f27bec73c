// Package clientstate holds per-client cart, wishlist and recently-viewed collections.
//
// The reducers in this file are pure: they never modify their input and return
// a fresh slice. A refused action returns a copy of the unchanged state.
package clientstate

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoCeiling disables the stock ceiling check in cart reducers.
const NoCeiling = -1

// DefaultRecentlyViewedLimit bounds the recently-viewed list when no limit is configured.
const DefaultRecentlyViewedLimit = 20

// CartItem is one cart line.
type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// WishlistItem is a saved product.
type WishlistItem struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image"`
	AddedAt time.Time       `json:"addedAt"`
}

// ViewedItem is a recently viewed product.
type ViewedItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	ViewedAt time.Time       `json:"viewedAt"`
}

func withinCeiling(qty, ceiling int) bool {
	return ceiling == NoCeiling || qty <= ceiling
}

func copyItems[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// AddToCart appends line or bumps an existing line by one, never past ceiling.
func AddToCart(items []CartItem, line CartItem, ceiling int) []CartItem {
	out := copyItems(items)
	for i := range out {
		if out[i].ID == line.ID {
			if withinCeiling(out[i].Quantity+1, ceiling) {
				out[i].Quantity++
			}
			return out
		}
	}

	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if !withinCeiling(line.Quantity, ceiling) {
		return out
	}
	return append(out, line)
}

// UpdateCartQuantity sets a line's quantity. Zero or less removes the line.
func UpdateCartQuantity(items []CartItem, id string, qty, ceiling int) []CartItem {
	if qty <= 0 {
		return RemoveFromCart(items, id)
	}
	out := copyItems(items)
	for i := range out {
		if out[i].ID == id && withinCeiling(qty, ceiling) {
			out[i].Quantity = qty
		}
	}
	return out
}

// RemoveFromCart drops the line for id.
func RemoveFromCart(items []CartItem, id string) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// ClearCart empties the cart.
func ClearCart([]CartItem) []CartItem {
	return []CartItem{}
}

// CartTotal sums price × quantity over all lines.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// CartCount sums quantities over all lines.
func CartCount(items []CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// AddToWishlist appends item unless the product is already saved.
func AddToWishlist(items []WishlistItem, item WishlistItem) []WishlistItem {
	out := copyItems(items)
	for _, existing := range out {
		if existing.ID == item.ID {
			return out
		}
	}
	return append(out, item)
}

// RemoveFromWishlist drops the product id.
func RemoveFromWishlist(items []WishlistItem, id string) []WishlistItem {
	out := make([]WishlistItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// RecordView puts entry at the front stamped with now, dropping any earlier view
// of the same product and keeping at most limit entries.
func RecordView(items []ViewedItem, entry ViewedItem, now time.Time, limit int) []ViewedItem {
	if limit <= 0 {
		limit = DefaultRecentlyViewedLimit
	}
	entry.ViewedAt = now

	out := make([]ViewedItem, 0, limit)
	out = append(out, entry)
	for _, item := range items {
		if len(out) == limit {
			break
		}
		if item.ID != entry.ID {
			out = append(out, item)
		}
	}
	return out
}
