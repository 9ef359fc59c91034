package repository

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the provider's public profile, 1:1 with a provider user.
// AvgRating and ReviewCount are derived from review rows and kept in
// sync transactionally by the reviews module.
type Profile struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"userId"`
	Bio             string    `json:"bio"`
	Categories      []string  `json:"categories"`
	ServiceAreas    []string  `json:"serviceAreas"`
	PortfolioImages []string  `json:"portfolioImages"`

	HourlyRateMinCents *int64 `json:"hourlyRateMinCents,omitempty"`
	HourlyRateMaxCents *int64 `json:"hourlyRateMaxCents,omitempty"`
	YearsExperience    int    `json:"yearsExperience"`

	IsVerified  bool    `json:"isVerified"`
	IsAvailable bool    `json:"isAvailable"`
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`

	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address *string  `json:"address,omitempty"`
	City    *string  `json:"city,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpsertParams carries the caller-editable profile fields.
type UpsertParams struct {
	UserID          uuid.UUID
	Bio             string
	Categories      []string
	ServiceAreas    []string
	PortfolioImages []string

	HourlyRateMinCents *int64
	HourlyRateMaxCents *int64
	YearsExperience    int
	IsAvailable        bool

	Lat     *float64
	Lng     *float64
	Address *string
	City    *string
}

// ListParams filters and sorts the provider directory.
type ListParams struct {
	// Query is matched with full-text search over the user's full name,
	// email and the profile bio.
	Query         string
	City          string
	Category      string
	OnlyAvailable bool
	OnlyVerified  bool
	// Sort is "rating" (avg desc, count desc, newest) or "newest".
	Sort  string
	Limit int
}

// Listing is one provider directory entry: the profile joined with the
// public fields of its user.
type Listing struct {
	Profile
	FullName  string  `json:"fullName"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}
