// Package repository persists service categories.
package repository

import (
	"time"

	"github.com/google/uuid"
)

// Category is one service category. SortOrder defines display order
// and is reassigned wholesale by the admin reorder operation.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpsertParams carries the admin-editable category fields.
type UpsertParams struct {
	Slug     string
	Name     string
	Icon     string
	IsActive bool
}
