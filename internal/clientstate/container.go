package clientstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Collection names one of the per-client lists.
type Collection string

const (
	CollectionCart           Collection = "cart"
	CollectionWishlist       Collection = "wishlist"
	CollectionRecentlyViewed Collection = "recently-viewed"
)

// Key returns the storage key for an owner's collection.
func Key(owner string, c Collection) string {
	return "state:" + owner + ":" + string(c)
}

// Container applies reducers to stored collections, saving the whole collection on each mutation.
type Container struct {
	store       Store
	recentLimit int
	now         func() time.Time
	logger      zerolog.Logger
}

// NewContainer creates a Container over store.
func NewContainer(store Store, recentLimit int, logger zerolog.Logger) *Container {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentlyViewedLimit
	}
	return &Container{
		store:       store,
		recentLimit: recentLimit,
		now:         time.Now,
		logger:      logger.With().Str("component", "clientstate").Logger(),
	}
}

func load[T any](ctx context.Context, s Store, key string) ([]T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decode[T](raw, key)
}

func decode[T any](raw []byte, key string) ([]T, error) {
	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return items, nil
}

// mutate loads a collection, applies reduce and saves the result atomically.
func mutate[T any](ctx context.Context, c *Container, owner string, coll Collection, reduce func([]T) []T) ([]T, error) {
	key := Key(owner, coll)
	var result []T

	err := c.store.Update(ctx, key, func(current []byte) ([]byte, error) {
		items, err := decode[T](current, key)
		if err != nil {
			return nil, err
		}
		result = reduce(items)
		if len(result) == 0 {
			return nil, nil
		}
		return json.Marshal(result)
	})
	if err != nil {
		c.logger.Error().Err(err).Str("owner", owner).Str("collection", string(coll)).Msg("failed to save client state")
		return nil, err
	}
	return result, nil
}

// Cart returns the owner's cart.
func (c *Container) Cart(ctx context.Context, owner string) ([]CartItem, error) {
	return load[CartItem](ctx, c.store, Key(owner, CollectionCart))
}

// AddToCart adds line to the owner's cart, bounded by ceiling.
func (c *Container) AddToCart(ctx context.Context, owner string, line CartItem, ceiling int) ([]CartItem, error) {
	return mutate(ctx, c, owner, CollectionCart, func(items []CartItem) []CartItem {
		return AddToCart(items, line, ceiling)
	})
}

// UpdateCartQuantity sets a line's quantity, bounded by ceiling.
func (c *Container) UpdateCartQuantity(ctx context.Context, owner, id string, qty, ceiling int) ([]CartItem, error) {
	return mutate(ctx, c, owner, CollectionCart, func(items []CartItem) []CartItem {
		return UpdateCartQuantity(items, id, qty, ceiling)
	})
}

// RemoveFromCart drops a line from the owner's cart.
func (c *Container) RemoveFromCart(ctx context.Context, owner, id string) ([]CartItem, error) {
	return mutate(ctx, c, owner, CollectionCart, func(items []CartItem) []CartItem {
		return RemoveFromCart(items, id)
	})
}

// ClearCart empties the owner's cart.
func (c *Container) ClearCart(ctx context.Context, owner string) ([]CartItem, error) {
	return mutate(ctx, c, owner, CollectionCart, ClearCart)
}

// Wishlist returns the owner's wishlist.
func (c *Container) Wishlist(ctx context.Context, owner string) ([]WishlistItem, error) {
	return load[WishlistItem](ctx, c.store, Key(owner, CollectionWishlist))
}

// AddToWishlist saves item for the owner.
func (c *Container) AddToWishlist(ctx context.Context, owner string, item WishlistItem) ([]WishlistItem, error) {
	if item.AddedAt.IsZero() {
		item.AddedAt = c.now().UTC()
	}
	return mutate(ctx, c, owner, CollectionWishlist, func(items []WishlistItem) []WishlistItem {
		return AddToWishlist(items, item)
	})
}

// RemoveFromWishlist drops a product from the owner's wishlist.
func (c *Container) RemoveFromWishlist(ctx context.Context, owner, id string) ([]WishlistItem, error) {
	return mutate(ctx, c, owner, CollectionWishlist, func(items []WishlistItem) []WishlistItem {
		return RemoveFromWishlist(items, id)
	})
}

// RecentlyViewed returns the owner's recently viewed products, newest first.
func (c *Container) RecentlyViewed(ctx context.Context, owner string) ([]ViewedItem, error) {
	return load[ViewedItem](ctx, c.store, Key(owner, CollectionRecentlyViewed))
}

// RecordView notes that the owner viewed a product.
func (c *Container) RecordView(ctx context.Context, owner string, entry ViewedItem) ([]ViewedItem, error) {
	now := c.now().UTC()
	return mutate(ctx, c, owner, CollectionRecentlyViewed, func(items []ViewedItem) []ViewedItem {
		return RecordView(items, entry, now, c.recentLimit)
	})
}
