package errors

import (
	"encoding/json"
	"net/http"
)

func WriteError(w http.ResponseWriter, err error) {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	if appErr.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(appErr.StatusCode())

	response := ErrorResponse{
		Status:  StatusError,
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}

	// Headers are already out; nothing useful can be done on failure.
	_ = json.NewEncoder(w).Encode(response)
}

func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Return error so caller can log - no recovery possible after WriteHeader
		return err
	}
	return nil
}
