package transport

// SubmitRequest is the payload for a provider's quote on a request.
// Amount is in whole currency units.
type SubmitRequest struct {
	RequestID         string  `json:"requestId" validate:"required,uuid"`
	Amount            float64 `json:"amount" validate:"required,gt=0"`
	Message           string  `json:"message" validate:"max=2000"`
	EstimatedDuration *string `json:"estimatedDuration,omitempty" validate:"omitempty,max=100"`
}

// RespondRequest is the payload for accepting or declining a quote.
type RespondRequest struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
}
