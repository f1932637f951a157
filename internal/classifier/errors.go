package classifier

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the request never completed a round trip to the API.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is returned when the API answers with a non-success status.
type APIError struct {
	Status     int
	StatusText string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.Status, e.StatusText)
}

func newAPIError(resp *http.Response, body apiErrorBody) *APIError {
	message := body.Message
	if message == "" {
		message = body.Error
	}
	return &APIError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Message:    message,
	}
}

// IsTransport reports whether err wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
