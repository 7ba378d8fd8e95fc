package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/benvon/plume/internal/models"
)

var (
	// ErrMissingCredential indicates a hosted provider has no API key configured
	ErrMissingCredential = errors.New("missing provider credential")
	// ErrProviderUnavailable indicates the provider could not be reached
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderTimeout indicates the provider did not answer in time
	ErrProviderTimeout = errors.New("provider timed out")
	// ErrProviderResponse indicates the provider answered with an error or an unusable body
	ErrProviderResponse = errors.New("provider error")
)

// APIError represents an error returned by a provider API
type APIError struct {
	Provider   models.Provider
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s API error (status %d, type %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrProviderResponse) match API errors
func (e *APIError) Unwrap() error {
	return ErrProviderResponse
}

// IsTimeoutError checks if an error is a provider timeout
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrProviderTimeout)
}

// IsUnavailableError checks if an error means the provider could not be reached
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// IsMissingCredentialError checks if an error is a missing API key
func IsMissingCredentialError(err error) bool {
	return errors.Is(err, ErrMissingCredential)
}

// missingCredential builds the precondition error for provider
func missingCredential(provider models.Provider) error {
	return fmt.Errorf("%w: no API key configured for %s", ErrMissingCredential, provider)
}

// classifyTransportError maps a failed round trip to ErrProviderTimeout or
// ErrProviderUnavailable. Errors that are already classified pass through.
func classifyTransportError(provider models.Provider, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrProviderTimeout) || errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrProviderResponse) || errors.Is(err, ErrMissingCredential) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", provider, ErrProviderTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w: %w", provider, ErrProviderTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", provider, ErrProviderUnavailable, err)
}

// newAPIError builds an APIError from a non-2xx response body. It understands
// {"error": "..."} and {"error": {"message", "type", "code"}} shapes.
func newAPIError(provider models.Provider, status int, body []byte) *APIError {
	apiErr := &APIError{Provider: provider, StatusCode: status}

	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		var text string
		var detail struct {
			Message string          `json:"message"`
			Type    string          `json:"type"`
			Status  string          `json:"status"`
			Code    json.RawMessage `json:"code"`
		}
		switch {
		case len(envelope.Error) > 0 && json.Unmarshal(envelope.Error, &text) == nil:
			apiErr.Message = text
		case len(envelope.Error) > 0 && json.Unmarshal(envelope.Error, &detail) == nil:
			apiErr.Message = detail.Message
			apiErr.Type = detail.Type
			if apiErr.Type == "" {
				apiErr.Type = detail.Status
			}
			apiErr.Code = strings.Trim(string(detail.Code), `"`)
		case envelope.Message != "":
			apiErr.Message = envelope.Message
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = TruncateString(strings.TrimSpace(string(body)), maxErrorBodyLength)
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("unexpected status %d", status)
	}
	return apiErr
}
