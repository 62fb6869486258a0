// Package apperr defines the error taxonomy shared across the service:
// validation failures, missing or foreign entities, credential problems and
// persistence faults. Handlers translate these to HTTP status codes with
// errors.As; everything else surfaces as an internal error.
package apperr

// ValidationError reports input that fails shape or constraint checks.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(msg string) error { return &ValidationError{Message: msg} }

// NotFoundError reports an entity that is absent or not owned by the caller.
// Ownership failures deliberately look identical to absence.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NotFound(msg string) error { return &NotFoundError{Message: msg} }

// AuthError reports a missing, invalid or expired credential.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func Auth(msg string) error { return &AuthError{Message: msg} }

// StoreError wraps a persistence failure. Reads never produce one (corrupt
// snapshots load as empty collections); writes surface it to the caller.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }
