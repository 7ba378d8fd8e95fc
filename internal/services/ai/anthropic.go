package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/benvon/plume/internal/models"
)

const (
	// DefaultAnthropicBaseURL is the public Anthropic API host
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	anthropicMaxTokens = 4096
	anthropicListLimit = 100
)

// AnthropicAdapter calls the Anthropic Messages API through the official SDK
type AnthropicAdapter struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewAnthropicAdapter creates the Anthropic adapter
func NewAnthropicAdapter(baseURL string, httpClient *http.Client, timeout time.Duration) *AnthropicAdapter {
	return &AnthropicAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (a *AnthropicAdapter) Provider() models.Provider {
	return models.ProviderAnthropic
}

// client builds an SDK client for the stored key with retries disabled
func (a *AnthropicAdapter) client(apiKey string) anthropic.Client {
	return anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(a.baseURL),
		option.WithHTTPClient(a.httpClient),
		option.WithMaxRetries(0),
	)
}

func (a *AnthropicAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, settings models.ProviderSettings) (string, error) {
	if !settings.HasCredential() {
		return "", missingCredential(models.ProviderAnthropic)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(settings.Model),
		MaxTokens: anthropicMaxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt))},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	client := a.client(settings.APIKey)
	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", a.convertError(err)
	}

	var result strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	if result.Len() == 0 {
		return "", fmt.Errorf("%s: %w: no text content in response", models.ProviderAnthropic, ErrProviderResponse)
	}
	return result.String(), nil
}

func (a *AnthropicAdapter) ListModels(ctx context.Context, settings models.ProviderSettings) ([]models.ModelInfo, error) {
	if !settings.HasCredential() {
		return nil, missingCredential(models.ProviderAnthropic)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	client := a.client(settings.APIKey)
	page, err := client.Models.List(ctx, anthropic.ModelListParams{Limit: anthropic.Int(anthropicListLimit)})
	if err != nil {
		return nil, a.convertError(err)
	}

	list := make([]models.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		name := m.DisplayName
		if name == "" {
			name = m.ID
		}
		list = append(list, models.ModelInfo{ID: m.ID, Name: name})
	}
	return list, nil
}

func (a *AnthropicAdapter) CheckStatus(_ context.Context, settings models.ProviderSettings) models.ProviderStatus {
	return credentialStatus(models.ProviderAnthropic, settings)
}

// convertError turns SDK errors into the package taxonomy. The vendor's
// message is read back from the raw error body.
func (a *AnthropicAdapter) convertError(err error) error {
	var sdkErr *anthropic.Error
	if errors.As(err, &sdkErr) {
		return newAPIError(models.ProviderAnthropic, sdkErr.StatusCode, []byte(sdkErr.RawJSON()))
	}
	return classifyTransportError(models.ProviderAnthropic, err)
}
