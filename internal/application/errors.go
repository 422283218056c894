package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission
	// for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist or
	// the principal may not know that it does.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when a login attempt cannot be
	// matched to an account.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when a disabled account attempts to
	// authenticate.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrEmailDomainNotAllowed is returned when a sign-in email does not
	// belong to the permitted university domain.
	ErrEmailDomainNotAllowed = errors.New("application: email domain not allowed")
	// ErrSessionExpired is returned when a session token has lapsed.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token was revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users. Booking validations fail fast, so the map usually holds
// a single entry naming the first rule that rejected the request.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// newValidationError builds a single-field validation error.
func newValidationError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}
