package transport

// CreateRequest is the payload for posting a new service request.
// Budget amounts are in whole currency units.
type CreateRequest struct {
	CategorySlug string   `json:"categorySlug" validate:"required"`
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	Photos       []string `json:"photos" validate:"max=10"`

	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address *string  `json:"address,omitempty"`
	City    *string  `json:"city,omitempty"`

	Urgency   string   `json:"urgency" validate:"required,oneof=urgent this_week flexible"`
	BudgetMin *float64 `json:"budgetMin,omitempty" validate:"omitempty,gte=0"`
	BudgetMax *float64 `json:"budgetMax,omitempty" validate:"omitempty,gte=0"`
}

// ListFilter carries the optional query filters for listing requests.
// Status, category and city only apply to admin callers.
type ListFilter struct {
	Status   string
	Category string
	City     string
	Limit    int
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_discussion accepted completed cancelled"`
}
