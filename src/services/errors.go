package services

import "errors"

// Sentinel errors for explicit error handling.
// Every workflow failure unwraps to exactly one of these; anything else
// is treated as unexpected by the HTTP boundary.

var (
	// ErrAuthenticationFailed covers bad credentials, inactive accounts and bad tokens
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAuthorizationFailed indicates the admin's role is not allowed
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrNotFound indicates the referenced admin does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation such as a duplicate email
	ErrConflict = errors.New("conflict")

	// ErrValidationFailed indicates malformed input or a weak password
	ErrValidationFailed = errors.New("validation failed")
)

// Error pairs a sentinel kind with a client-safe message
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Messages returned to clients
const (
	msgInvalidCredentials  = "Invalid email or password"
	msgInvalidRefreshToken = "Invalid or expired refresh token"
	msgAdminNotFound       = "Admin not found"
	msgEmailExists         = "Email already exists"
	msgWrongPassword       = "Current password is incorrect"
	msgPasswordMismatch    = "New password and confirm password don't match"
)

// PublicMessage returns the client-safe message for err, or fallback
func PublicMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
