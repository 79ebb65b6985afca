package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserExists is returned when registering a name that is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the given identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both unknown email and wrong password so the
	// caller cannot tell which check failed.
	ErrInvalidCredentials = errors.New("wrong email or password")
	// ErrMissingAuth is returned when the Authorization header is absent.
	ErrMissingAuth = errors.New("missing authorization headers")
	// ErrTokenInvalid is returned for malformed or badly signed tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a well-formed token is past its expiry.
	ErrTokenExpired = errors.New("expired token")
	// ErrAdminRequired is returned when the authenticated subject lacks the admin flag.
	ErrAdminRequired = errors.New("admin privileges required")
	// ErrStoreUnavailable wraps storage-layer failures that are not lookup misses.
	ErrStoreUnavailable = errors.New("storage unavailable")
)

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError pairs an error kind with its HTTP status.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognized is
// treated as an internal failure and never leaks its text to the caller.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, "User already exists.", "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, "User not found!", "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Wrong email or password", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrMissingAuth):
		return NewHTTPError(http.StatusUnauthorized, "Missing authorization headers", "MISSING_AUTH")
	case errors.Is(err, ErrTokenInvalid):
		return NewHTTPError(http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, "Expired token", "EXPIRED_TOKEN")
	case errors.Is(err, ErrAdminRequired):
		return NewHTTPError(http.StatusForbidden, "You don't have authorization", "ADMIN_REQUIRED")
	case errors.Is(err, ErrStoreUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, "storage unavailable", "STORE_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
