package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusBadRequest)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeDeskNotFound, Message: "desk 999 not found"},
			expected: "DESK_NOT_FOUND: desk 999 not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	appErr := DeskAlreadyBooked("desk 1 is already booked", cause)

	if !errors.Is(appErr, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      string
		status    int
		retryable bool
	}{
		{"invalid format", InvalidDateFormat("bad", nil), CodeInvalidDateFormat, http.StatusBadRequest, false},
		{"invalid range", InvalidDateRange("bad", nil), CodeInvalidDateRange, http.StatusBadRequest, false},
		{"in past", DateInPast("bad", nil), CodeDateInPast, http.StatusBadRequest, false},
		{"desk missing", DeskNotFound("bad", nil), CodeDeskNotFound, http.StatusNotFound, false},
		{"booking missing", BookingNotFound("bad", nil), CodeBookingNotFound, http.StatusNotFound, false},
		{"already booked", DeskAlreadyBooked("bad", nil), CodeDeskAlreadyBooked, http.StatusConflict, false},
		{"busy", DeskBusy("bad", nil), CodeDeskBusy, http.StatusConflict, true},
		{"rate limited", TooManyRequests(), CodeTooManyRequests, http.StatusTooManyRequests, true},
		{"too large", TooLarge(10), CodeTooLarge, http.StatusRequestEntityTooLarge, false},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
			if tt.err.Retryable != tt.retryable {
				t.Errorf("expected retryable %v, got %v", tt.retryable, tt.err.Retryable)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	wrapped := fmt.Errorf("handler: %w", appErr)

	if got := AsAppError(wrapped); got != appErr {
		t.Errorf("AsAppError should unwrap to the original AppError")
	}
	if !IsAppError(wrapped) {
		t.Error("IsAppError should see through wrapping")
	}

	plain := AsAppError(errors.New("boom"))
	if plain.Code != CodeInternal {
		t.Errorf("expected %s for a plain error, got %s", CodeInternal, plain.Code)
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, DeskBusy("desk 3 is being booked by another request", nil))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header for a retryable error")
	}

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != StatusError || body.Code != CodeDeskBusy {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestWriteError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "" {
		t.Error("plain errors are not retryable")
	}
}
