package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/plume/internal/models"
)

// OllamaAdapter talks to a self-hosted Ollama server via /api/generate.
// The endpoint comes from the stored settings on every call.
type OllamaAdapter struct {
	client        *http.Client
	timeout       time.Duration
	statusTimeout time.Duration
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaAdapter creates the local adapter
func NewOllamaAdapter(client *http.Client, timeout, statusTimeout time.Duration) *OllamaAdapter {
	return &OllamaAdapter{client: client, timeout: timeout, statusTimeout: statusTimeout}
}

func (o *OllamaAdapter) Provider() models.Provider {
	return models.ProviderOllama
}

func (o *OllamaAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, settings models.ProviderSettings) (string, error) {
	endpoint, err := o.endpoint(settings)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	reqBody := ollamaGenerateRequest{
		Model:  settings.Model,
		Prompt: userPrompt,
		System: systemPrompt,
		Stream: false,
	}
	var resp ollamaGenerateResponse
	err = doJSONRoundTrip(ctx, o.client, models.ProviderOllama, http.MethodPost, endpoint+"/api/generate", nil, reqBody, &resp)
	if err != nil {
		return "", localError(err)
	}
	if resp.Response == "" {
		return "", fmt.Errorf("%s: %w: empty response", models.ProviderOllama, ErrProviderResponse)
	}
	return resp.Response, nil
}

func (o *OllamaAdapter) ListModels(ctx context.Context, settings models.ProviderSettings) ([]models.ModelInfo, error) {
	endpoint, err := o.endpoint(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	tags, err := o.tags(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	list := make([]models.ModelInfo, 0, len(tags.Models))
	for _, m := range tags.Models {
		list = append(list, models.ModelInfo{ID: m.Name, Name: m.Name})
	}
	return list, nil
}

func (o *OllamaAdapter) CheckStatus(ctx context.Context, settings models.ProviderSettings) models.ProviderStatus {
	status := models.ProviderStatus{Provider: models.ProviderOllama, State: models.StateDisconnected}

	endpoint, err := o.endpoint(settings)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, o.statusTimeout)
	defer cancel()

	if _, err := o.tags(ctx, endpoint); err != nil {
		status.Error = "Failed to connect to Ollama server"
		return status
	}
	status.State = models.StateConnected
	return status
}

func (o *OllamaAdapter) tags(ctx context.Context, endpoint string) (*ollamaTagsResponse, error) {
	var tags ollamaTagsResponse
	err := doJSONRoundTrip(ctx, o.client, models.ProviderOllama, http.MethodGet, endpoint+"/api/tags", nil, nil, &tags)
	if err != nil {
		return nil, localError(err)
	}
	return &tags, nil
}

func (o *OllamaAdapter) endpoint(settings models.ProviderSettings) (string, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(settings.Endpoint), "/")
	if endpoint == "" {
		return "", fmt.Errorf("%s: %w: no endpoint configured", models.ProviderOllama, ErrProviderUnavailable)
	}
	return endpoint, nil
}

// localError reports a non-2xx answer from the local server as unavailable
func localError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w: status %d: %s", models.ProviderOllama, ErrProviderUnavailable, apiErr.StatusCode, apiErr.Message)
	}
	return err
}
