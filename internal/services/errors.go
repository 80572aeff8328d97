package services

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrObjectTypeNotFound = errors.New("task object type not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("access denied")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports malformed, missing or contradictory input.
// Nothing has been written when it is returned.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err means a missing task, catalog entry or user
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrObjectTypeNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
