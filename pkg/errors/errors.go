package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeTimeout         = "TIMEOUT"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeTooLarge        = "PAYLOAD_TOO_LARGE"
	CodeUnsupported     = "UNSUPPORTED_MEDIA_TYPE"
	CodeTooManyRequests = "RATE_LIMITED"

	// Booking domain codes.
	CodeInvalidDateFormat = "INVALID_DATE_FORMAT"
	CodeInvalidDateRange  = "INVALID_DATE_RANGE"
	CodeDateInPast        = "DATE_IN_PAST"
	CodeDeskNotFound      = "DESK_NOT_FOUND"
	CodeDeskAlreadyBooked = "DESK_ALREADY_BOOKED"
	CodeBookingNotFound   = "BOOKING_NOT_FOUND"
	CodeDeskBusy          = "DESK_BUSY"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Retryable  bool           `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  string         `json:"status"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Validation(message string, details map[string]any) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message, http.StatusInternalServerError)
}

func Timeout(message string) *AppError {
	return New(CodeTimeout, message, http.StatusGatewayTimeout)
}

func Unavailable(service string) *AppError {
	return New(CodeUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

func TooLarge(limit int) *AppError {
	return New(CodeTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
}

func UnsupportedMediaType(contentType string) *AppError {
	return New(CodeUnsupported, fmt.Sprintf("unsupported content type %q, expected application/json", contentType), http.StatusUnsupportedMediaType)
}

func TooManyRequests() *AppError {
	e := New(CodeTooManyRequests, "rate limit exceeded", http.StatusTooManyRequests)
	e.Retryable = true
	return e
}

func InvalidDateFormat(message string, err error) *AppError {
	return Wrap(err, CodeInvalidDateFormat, message, http.StatusBadRequest)
}

func InvalidDateRange(message string, err error) *AppError {
	return Wrap(err, CodeInvalidDateRange, message, http.StatusBadRequest)
}

func DateInPast(message string, err error) *AppError {
	return Wrap(err, CodeDateInPast, message, http.StatusBadRequest)
}

func DeskNotFound(message string, err error) *AppError {
	return Wrap(err, CodeDeskNotFound, message, http.StatusNotFound)
}

func BookingNotFound(message string, err error) *AppError {
	return Wrap(err, CodeBookingNotFound, message, http.StatusNotFound)
}

func DeskAlreadyBooked(message string, err error) *AppError {
	return Wrap(err, CodeDeskAlreadyBooked, message, http.StatusConflict)
}

// DeskBusy means another writer held the desk; the same request may succeed
// when retried.
func DeskBusy(message string, err error) *AppError {
	e := Wrap(err, CodeDeskBusy, message, http.StatusConflict)
	e.Retryable = true
	return e
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
