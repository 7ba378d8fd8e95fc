package ai

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/benvon/plume/internal/models"
	"go.uber.org/zap"
)

// Adapter is the uniform interface implemented once per provider
type Adapter interface {
	// Provider reports which backend this adapter talks to
	Provider() models.Provider

	// Generate sends one system prompt and one user prompt and returns the generated text
	Generate(ctx context.Context, systemPrompt, userPrompt string, settings models.ProviderSettings) (string, error)

	// ListModels returns the models the provider offers
	ListModels(ctx context.Context, settings models.ProviderSettings) ([]models.ModelInfo, error)

	// CheckStatus reports whether the provider is usable with settings
	CheckStatus(ctx context.Context, settings models.ProviderSettings) models.ProviderStatus
}

// Registry maps providers to their adapters
type Registry struct {
	adapters map[models.Provider]Adapter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[models.Provider]Adapter),
	}
}

// Register adds or replaces the adapter for its provider
func (r *Registry) Register(adapter Adapter) {
	r.adapters[adapter.Provider()] = adapter
}

// Get returns the adapter for provider
func (r *Registry) Get(provider models.Provider) (Adapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, &ErrProviderNotFound{Name: string(provider)}
	}
	return adapter, nil
}

// Providers lists registered providers in a stable order
func (r *Registry) Providers() []models.Provider {
	providers := make([]models.Provider, 0, len(r.adapters))
	for p := range r.adapters {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })
	return providers
}

// ErrProviderNotFound is returned when no adapter is registered for a provider
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

// Options configures the adapters built by NewDefaultRegistry.
// Empty base URLs select the public vendor endpoints.
type Options struct {
	HTTPClient       *http.Client
	LocalTimeout     time.Duration
	StatusTimeout    time.Duration
	VendorTimeout    time.Duration
	OpenAIBaseURL    string
	GroqBaseURL      string
	AnthropicBaseURL string
	GeminiBaseURL    string
	Logger           *zap.Logger
	DebugMode        bool
}

const (
	// DefaultLocalTimeout bounds a local generation call
	DefaultLocalTimeout = 30 * time.Second
	// DefaultStatusTimeout bounds a local status probe
	DefaultStatusTimeout = 5 * time.Second
	// DefaultVendorTimeout bounds a hosted provider call
	DefaultVendorTimeout = 60 * time.Second
)

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.LocalTimeout <= 0 {
		o.LocalTimeout = DefaultLocalTimeout
	}
	if o.StatusTimeout <= 0 {
		o.StatusTimeout = DefaultStatusTimeout
	}
	if o.VendorTimeout <= 0 {
		o.VendorTimeout = DefaultVendorTimeout
	}
	if o.OpenAIBaseURL == "" {
		o.OpenAIBaseURL = DefaultOpenAIBaseURL
	}
	if o.GroqBaseURL == "" {
		o.GroqBaseURL = DefaultGroqBaseURL
	}
	if o.AnthropicBaseURL == "" {
		o.AnthropicBaseURL = DefaultAnthropicBaseURL
	}
	if o.GeminiBaseURL == "" {
		o.GeminiBaseURL = DefaultGeminiBaseURL
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// NewDefaultRegistry registers one traced adapter per supported provider.
// This is the only place provider names are bound to implementations.
func NewDefaultRegistry(opts Options) *Registry {
	opts = opts.withDefaults()

	registry := NewRegistry()
	adapters := []Adapter{
		NewOllamaAdapter(opts.HTTPClient, opts.LocalTimeout, opts.StatusTimeout),
		NewOpenAIAdapter(models.ProviderOpenAI, opts.OpenAIBaseURL, opts.HTTPClient, opts.VendorTimeout),
		NewAnthropicAdapter(opts.AnthropicBaseURL, opts.HTTPClient, opts.VendorTimeout),
		NewOpenAIAdapter(models.ProviderGroq, opts.GroqBaseURL, opts.HTTPClient, opts.VendorTimeout),
		NewGeminiAdapter(opts.GeminiBaseURL, opts.HTTPClient, opts.VendorTimeout),
	}
	for _, adapter := range adapters {
		registry.Register(WithTracing(adapter, opts.Logger, opts.DebugMode))
	}
	return registry
}
