package model

import (
	"time"

	"github.com/google/uuid"
)

// ContentBlock is a piece of editable site content such as a banner or announcement.
type ContentBlock struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	Active    bool      `json:"active" db:"active"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ContentRequest is the admin payload for creating or updating a content block.
type ContentRequest struct {
	Key       string `json:"key" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Body      string `json:"body"`
	ImageURL  string `json:"imageUrl"`
	Active    *bool  `json:"active"`
	SortOrder int    `json:"sortOrder"`
}
