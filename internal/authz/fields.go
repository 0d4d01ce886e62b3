package authz

import (
	"time"

	"github.com/spec-kit/vacation-manager/internal/domain"
)

// ValidDateRange reports whether the start/end pair forms a valid interval.
// Both dates are required and start must not be after end.
func ValidDateRange(start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !start.After(end)
}

// NormalizeForType applies the per-type field policy: sick requests never
// carry the half-day flag, and an attachment is only meaningful on sick
// requests.
func NormalizeForType(req domain.VacationRequest) domain.VacationRequest {
	if req.Type == domain.RequestTypeSick {
		req.HalfDay = false
	} else {
		req.AttachmentPath = nil
	}
	return req
}
