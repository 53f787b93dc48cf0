package orders

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an order id has no match in the store.
// Merge targets that disappear between poll cycles hit this; it is logged,
// never surfaced to the user.
var ErrNotFound = errors.New("order not found")

// ValidationError reports bad local input, e.g. a non-positive quantity.
// It is handled fully on the client side: the displayed value reverts and
// no network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GatewayError reports a network/HTTP failure or a non-success response
// envelope from the remote order gateway. User-initiated actions surface it
// to the caller for display; background poll failures are logged only.
type GatewayError struct {
	Op         string // gateway operation, e.g. "execute", "check_status"
	StatusCode int    // HTTP status, 0 for transport errors
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s failed: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway %s failed: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsGateway reports whether err is a GatewayError.
func IsGateway(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
