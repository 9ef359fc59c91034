// Package transport defines the category API payloads.
package transport

// UpsertRequest creates or updates a category. Admin only.
type UpsertRequest struct {
	Slug     string `json:"slug" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=128"`
	Icon     string `json:"icon" validate:"max=64"`
	IsActive bool   `json:"isActive"`
}

// ReorderRequest reassigns display order. Admin only.
type ReorderRequest struct {
	Slugs []string `json:"slugs" validate:"required,min=1,max=100,dive,max=64"`
}
