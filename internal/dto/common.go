package dto

import (
	"fmt"
	"time"

	"github.com/fleetms/vms-backend/pkg/apperror"
)

// ParseDate accepts the date-only form the SPA sends, falling back to
// RFC3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", s, apperror.ErrInvalidInput)
}
