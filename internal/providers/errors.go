package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingCredential is returned by constructors when no API key is set.
var ErrMissingCredential = errors.New("missing API credential")

// AuthError reports a credential the provider rejected.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication error: %s", e.Provider, e.Message)
}

// APIError reports a non-success HTTP status from the provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// IsCredentialError reports a missing or rejected credential.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || IsAuthError(err)
}

// statusError classifies a non-200 response.
func statusError(provider string, status int, body []byte) error {
	msg := errorMessage(body)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{Provider: provider, Message: msg}
	}
	return &APIError{Provider: provider, StatusCode: status, Message: msg}
}

// errorMessage pulls error.message out of the JSON error envelope shared by
// the supported APIs, falling back to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512] + "..."
	}
	return msg
}
