package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is used when a category is created without a colour.
const DefaultCategoryColor = "#6b7280"

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugStripper = regexp.MustCompile(`[^a-z0-9]+`)
)

// Category organises the catalogue.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	Active    bool      `json:"active" db:"active"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryRequest is the admin payload for creating or updating a category.
type CategoryRequest struct {
	Slug      string `json:"slug"`
	Name      string `json:"name" binding:"required"`
	Color     string `json:"color"`
	Active    *bool  `json:"active"`
	SortOrder int    `json:"sortOrder"`
}

// Slugify lower-cases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	s = slugStripper.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether s is lower-case kebab-case.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
