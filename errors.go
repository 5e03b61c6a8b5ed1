package entkit

import "fmt"

// =====================================
// Error Handling
// =====================================

// Error represents an engine-specific error
type Error struct {
	Type    ErrorType
	Entity  string
	Message string
	Cause   error
}

// Error formats the failure as "type: message", appending the cause when one
// is present.
func (e Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As chains.
func (e Error) Unwrap() error {
	return e.Cause
}

// Is matches two engine errors by Type alone; entity and message are ignored.
func (e Error) Is(target error) bool {
	if targetErr, ok := target.(Error); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// NewEntityNotFoundError reports an entity slug with no static configuration
// and no remote schema description. Terminal for that resolution attempt.
func NewEntityNotFoundError(slug string) Error {
	return Error{
		Type:    ErrorTypeEntityNotFound,
		Entity:  slug,
		Message: fmt.Sprintf("entity %q not found", slug),
	}
}

// NewConfigLoadError reports a transport or parse failure while resolving a
// configuration. Recoverable by retry at the caller's discretion.
func NewConfigLoadError(slug string, cause error) Error {
	return Error{
		Type:    ErrorTypeConfigLoad,
		Entity:  slug,
		Message: fmt.Sprintf("failed to load configuration for %q", slug),
		Cause:   cause,
	}
}

// NewFetchError reports a list or detail failure.
func NewFetchError(slug, message string, cause error) Error {
	return Error{
		Type:    ErrorTypeFetch,
		Entity:  slug,
		Message: message,
		Cause:   cause,
	}
}

// NewMutationError reports a create/update/delete failure. The message is the
// best-effort humanized reason extracted from the upstream response body.
func NewMutationError(slug, message string, cause error) Error {
	return Error{
		Type:    ErrorTypeMutation,
		Entity:  slug,
		Message: message,
		Cause:   cause,
	}
}

// IsEntityNotFound checks if an error is an "entity not found" error
func IsEntityNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeEntityNotFound)
}

// IsConfigLoad checks if an error is a configuration-load error
func IsConfigLoad(err error) bool {
	return IsErrorType(err, ErrorTypeConfigLoad)
}

// IsFetch checks if an error is a fetch error
func IsFetch(err error) bool {
	return IsErrorType(err, ErrorTypeFetch)
}

// IsMutation checks if an error is a mutation error
func IsMutation(err error) bool {
	return IsErrorType(err, ErrorTypeMutation)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if engineErr, ok := err.(Error); ok {
		return engineErr.Type == errorType
	}
	return false
}
