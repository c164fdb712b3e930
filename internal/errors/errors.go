package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmailRequired is returned when a request is missing the email field.
	ErrEmailRequired = errors.New("email required")
	// ErrAdminUsesPassword is returned when an admin email requests an OTP.
	ErrAdminUsesPassword = errors.New("admins must login with password")
	// ErrEmailNotRegistered is returned when an email has no active client record.
	ErrEmailNotRegistered = errors.New("email not registered")
	// ErrInvalidOTP is returned when no challenge matches the submitted code.
	ErrInvalidOTP = errors.New("invalid OTP")
	// ErrOTPExpired is returned when the matching challenge is past its validity window.
	ErrOTPExpired = errors.New("OTP expired")
	// ErrOTPDeliveryFailed is returned when the mail collaborator fails to deliver a code.
	ErrOTPDeliveryFailed = errors.New("failed to send OTP")
	// ErrNotAdmin is returned when a password login is attempted for a non-admin email.
	ErrNotAdmin = errors.New("not an admin")
	// ErrInvalidPassword is returned when the admin password does not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrClientExists is returned when adding a client whose email is already registered.
	ErrClientExists = errors.New("client already exists")
	// ErrClientNotFound is returned when a client id resolves to nothing.
	ErrClientNotFound = errors.New("client not found")
	// ErrProjectNotFound is returned when a project id resolves to nothing.
	ErrProjectNotFound = errors.New("project not found")
	// ErrReportNotFound is returned when a report id resolves to nothing.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidFileType is returned when an upload's extension is not in the allowed set.
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrMissingFields is returned when required request fields are absent.
	ErrMissingFields = errors.New("missing required fields")
	// ErrForbidden is returned when the caller's identity does not permit the operation.
	ErrForbidden = errors.New("forbidden")
)

// RateLimitedError is returned when an OTP is requested inside the cooldown window.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("please wait %ds before requesting a new OTP", e.RetryAfterSeconds)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	RetryAfter int
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
		Error:      e.Message,
		Code:       e.Code,
		RetryAfter: e.RetryAfter,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		httpErr := NewHTTPError(http.StatusTooManyRequests, err.Error(), "RATE_LIMITED")
		httpErr.RetryAfter = rateLimited.RetryAfterSeconds
		return httpErr
	}

	switch {
	case errors.Is(err, ErrEmailRequired), errors.Is(err, ErrMissingFields):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrAdminUsesPassword):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ADMIN_USES_PASSWORD")
	case errors.Is(err, ErrEmailNotRegistered):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_REGISTERED")
	case errors.Is(err, ErrInvalidOTP):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_OTP")
	case errors.Is(err, ErrOTPExpired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "OTP_EXPIRED")
	case errors.Is(err, ErrOTPDeliveryFailed):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "DELIVERY_FAILED")
	case errors.Is(err, ErrNotAdmin):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_ADMIN")
	case errors.Is(err, ErrInvalidPassword):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_PASSWORD")
	case errors.Is(err, ErrClientExists):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CLIENT_EXISTS")
	case errors.Is(err, ErrClientNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CLIENT_NOT_FOUND")
	case errors.Is(err, ErrProjectNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PROJECT_NOT_FOUND")
	case errors.Is(err, ErrReportNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "REPORT_NOT_FOUND")
	case errors.Is(err, ErrInvalidFileType):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_FILE_TYPE")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
