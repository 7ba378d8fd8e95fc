package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/benvon/plume/internal/models"
)

// maxResponseBytes caps how much of a provider response is read
const maxResponseBytes = 8 << 20

// doJSONRoundTrip sends reqBody (nil for no body) and decodes a 2xx response
// into respBody. Transport failures are classified; non-2xx answers become
// *APIError.
func doJSONRoundTrip(
	ctx context.Context,
	client *http.Client,
	provider models.Provider,
	method, url string,
	headers map[string]string,
	reqBody any,
	respBody any,
) error {
	var body io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", provider, err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: %w: create request: %w", provider, ErrProviderUnavailable, err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportError(provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransportError(provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(provider, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, respBody); err != nil {
		return fmt.Errorf("%s: %w: decode response: %w", provider, ErrProviderResponse, err)
	}
	return nil
}
