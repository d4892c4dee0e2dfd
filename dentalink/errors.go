package dentalink

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the Dentalink client.
var (
	// ErrMissingURL indicates the client was created without a base URL.
	ErrMissingURL = errors.New("dentalink base URL is required")
	// ErrMissingToken indicates the client was created without an API token.
	ErrMissingToken = errors.New("dentalink API token is required")
)

// APIError represents a non-200 response from the Dentalink API.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("dentalink API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// errorEnvelope mirrors the API's error body: {"error":{"message":"..."}}.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// newAPIError builds an APIError from a failed response. The message comes
// from the error envelope when the body decodes, otherwise the raw body
// text is used as-is.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Message = envelope.Error.Message
	return apiErr
}
