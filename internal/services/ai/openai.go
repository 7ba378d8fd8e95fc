package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/benvon/plume/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIAdapter serves any provider that speaks the OpenAI chat completions
// API. It backs both OpenAI and Groq, which differ only by base URL.
type OpenAIAdapter struct {
	provider   models.Provider
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewOpenAIAdapter creates an OpenAI-compatible adapter for provider
func NewOpenAIAdapter(provider models.Provider, baseURL string, httpClient *http.Client, timeout time.Duration) *OpenAIAdapter {
	return &OpenAIAdapter{
		provider:   provider,
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (p *OpenAIAdapter) Provider() models.Provider {
	return p.provider
}

// client builds an SDK client for the stored key. Retries are disabled so
// one request maps to exactly one upstream call.
func (p *OpenAIAdapter) client(apiKey string) openai.Client {
	return openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithHTTPClient(p.httpClient),
		option.WithMaxRetries(0),
	)
}

func (p *OpenAIAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, settings models.ProviderSettings) (string, error) {
	if !settings.HasCredential() {
		return "", missingCredential(p.provider)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client := p.client(settings.APIKey)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(settings.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", p.convertError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w: %s", p.provider, ErrProviderResponse, ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%s: %w: empty response", p.provider, ErrProviderResponse)
	}
	return content, nil
}

func (p *OpenAIAdapter) ListModels(ctx context.Context, settings models.ProviderSettings) ([]models.ModelInfo, error) {
	if !settings.HasCredential() {
		return nil, missingCredential(p.provider)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client := p.client(settings.APIKey)
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, p.convertError(err)
	}

	list := make([]models.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		list = append(list, models.ModelInfo{ID: m.ID, Name: m.ID})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (p *OpenAIAdapter) CheckStatus(_ context.Context, settings models.ProviderSettings) models.ProviderStatus {
	return credentialStatus(p.provider, settings)
}

// convertError turns SDK errors into the package taxonomy
func (p *OpenAIAdapter) convertError(err error) error {
	var sdkErr *openai.Error
	if errors.As(err, &sdkErr) {
		message := sdkErr.Message
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", sdkErr.StatusCode)
		}
		return &APIError{
			Provider:   p.provider,
			StatusCode: sdkErr.StatusCode,
			Type:       sdkErr.Type,
			Code:       sdkErr.Code,
			Message:    message,
		}
	}
	return classifyTransportError(p.provider, err)
}

// credentialStatus is the status rule for hosted providers: connected unless
// the credential is blank, since they offer no cheap health probe.
func credentialStatus(provider models.Provider, settings models.ProviderSettings) models.ProviderStatus {
	if !settings.HasCredential() {
		return models.ProviderStatus{
			Provider: provider,
			State:    models.StateDisconnected,
			Error:    fmt.Sprintf("no API key configured for %s", provider),
		}
	}
	return models.ProviderStatus{Provider: provider, State: models.StateConnected}
}
