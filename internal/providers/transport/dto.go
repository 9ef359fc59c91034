// Package transport defines the provider profile API payloads.
package transport

// UpsertProfileRequest carries the caller-editable provider profile
// fields. Rates are in dollars and converted to cents on write.
type UpsertProfileRequest struct {
	Bio             string   `json:"bio" validate:"max=4000"`
	Categories      []string `json:"categories" validate:"max=20,dive,max=64"`
	ServiceAreas    []string `json:"serviceAreas" validate:"max=20,dive,max=128"`
	PortfolioImages []string `json:"portfolioImages" validate:"max=20,dive,max=512"`

	HourlyRateMin   *float64 `json:"hourlyRateMin" validate:"omitempty,gte=0"`
	HourlyRateMax   *float64 `json:"hourlyRateMax" validate:"omitempty,gte=0"`
	YearsExperience int      `json:"yearsExperience" validate:"gte=0,lte=80"`
	IsAvailable     bool     `json:"isAvailable"`

	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Address *string  `json:"address" validate:"omitempty,max=256"`
	City    *string  `json:"city" validate:"omitempty,max=128"`
}

// AddPortfolioImageRequest appends one stored-image key to the profile.
type AddPortfolioImageRequest struct {
	ImageKey string `json:"imageKey" validate:"required,max=512"`
}
