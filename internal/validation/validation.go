package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for check-in dates.
const DateLayout = "2006-01-02"

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ValidateRange checks that value lies in [min, max].
func ValidateRange(field string, value, min, max int) error {
	if value < min || value > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return nil
}

// ValidateDate checks that s is a YYYY-MM-DD calendar date.
func ValidateDate(field, s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ValidationError{Field: field, Message: "date is required"}
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}

// ValidateRequired checks that s is not blank.
func ValidateRequired(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// ValidateOneOf checks that s is one of the allowed values.
func ValidateOneOf(field, s string, allowed []string) error {
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return ValidationError{Field: field, Message: fmt.Sprintf("%q is not a recognised value", s)}
}
