package authgate

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error kinds. Every [*Error] produced by this package matches
// exactly one of these under [errors.Is], so callers dispatch on kind
// without inspecting messages or concrete types.
var (
	// ErrEmptyInput marks a required argument that was missing or blank.
	ErrEmptyInput = errors.New("empty input")
	// ErrBadRequest marks malformed input, including invalid token signatures.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized marks an authentication or authorization failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an entity lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a session-limit rejection.
	ErrConflict = errors.New("conflict")
	// ErrUserNotFound is returned by [UserStore] implementations when no
	// user matches the given id or email.
	ErrUserNotFound = errors.New("user not found")
)

// Error is the taxonomy entry carried inside a [Response]. It pairs a
// machine-readable code with an HTTP-status-like classification, mirroring
// the wire shape {code, message, statusCode}.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"statusCode"`

	kind  error
	cause error
}

func (e *Error) Error() string { return e.Message }

// Is reports whether target is this error's kind sentinel.
func (e *Error) Is(target error) bool { return target == e.kind }

// Unwrap exposes the original cause, if any. The catch-all conversion path
// preserves the underlying error rather than discarding it.
func (e *Error) Unwrap() error { return e.cause }

// NewEmptyInput reports a missing required argument.
func NewEmptyInput(entity string) *Error {
	return &Error{
		Code:    "ERR_BAD_REQUEST",
		Message: entity + " must be provided",
		Status:  http.StatusBadRequest,
		kind:    ErrEmptyInput,
	}
}

// NewBadRequest reports malformed input.
func NewBadRequest(message string) *Error {
	return &Error{
		Code:    "ERR_BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		kind:    ErrBadRequest,
	}
}

// NewUnauthorized reports an authentication failure. The message is
// prefixed with "Unauthorized" to match the envelope contract.
func NewUnauthorized(message string) *Error {
	full := "Unauthorized"
	if message != "" {
		full += ": " + message
	}
	return &Error{
		Code:    "ERR_UNAUTHORIZED",
		Message: full,
		Status:  http.StatusUnauthorized,
		kind:    ErrUnauthorized,
	}
}

// NewNotFound reports an entity lookup miss.
func NewNotFound(entity string) *Error {
	return &Error{
		Code:    "ERR_NOT_FOUND",
		Message: entity + " not found",
		Status:  http.StatusNotFound,
		kind:    ErrNotFound,
	}
}

// NewConflict reports a session-limit rejection.
func NewConflict(message string) *Error {
	return &Error{
		Code:    "ERR_CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		kind:    ErrConflict,
	}
}

// AsError converts any error into a taxonomy [*Error]. Errors already in
// the taxonomy pass through unchanged; everything else becomes a generic
// internal error with the original preserved as the cause.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{
		Code:    "ERR_INTERNAL",
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
		cause:   err,
	}
}

// Wrap attaches a cause to a taxonomy error, keeping its kind and code.
func Wrap(apiErr *Error, cause error) *Error {
	if apiErr == nil {
		return AsError(cause)
	}
	out := *apiErr
	out.cause = cause
	if cause != nil {
		out.Message = fmt.Sprintf("%s: %v", apiErr.Message, cause)
	}
	return &out
}
