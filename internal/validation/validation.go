package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
)

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date string into a UTC time.
func ParseDate(str string) (time.Time, error) {
	t, err := time.Parse(DateLayout, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", str)
	}
	return t.UTC(), nil
}
