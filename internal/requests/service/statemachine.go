package service

import (
	"fmt"

	"handylink_backend/internal/requests/repository"
	"handylink_backend/platform/apperr"
)

// validateTransition enforces the request status machine for a direct
// status update. Admins may set any valid status; the owning client is
// limited to cancelling (never from completed) and completing (only from
// accepted, with an accepted quote on record).
func validateTransition(sr *repository.ServiceRequest, next repository.Status, isAdmin bool) error {
	if !next.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown status %q", next))
	}
	if isAdmin {
		return nil
	}

	switch next {
	case repository.StatusCancelled:
		if sr.Status == repository.StatusCompleted {
			return apperr.Conflict("cannot cancel a completed request")
		}
		return nil
	case repository.StatusCompleted:
		if sr.Status != repository.StatusAccepted || sr.AcceptedQuoteID == nil {
			return apperr.Conflict("request can only be completed from accepted with an accepted quote")
		}
		return nil
	default:
		return apperr.Conflict(fmt.Sprintf("invalid status transition %s -> %s", sr.Status, next))
	}
}
