package models

import "fmt"

// Provider identifies an LLM backend
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGroq      Provider = "groq"
	ProviderGemini    Provider = "gemini"
)

// AllProviders lists every supported provider in display order
func AllProviders() []Provider {
	return []Provider{ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGroq, ProviderGemini}
}

// Valid reports whether p is a known provider
func (p Provider) Valid() bool {
	switch p {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGroq, ProviderGemini:
		return true
	default:
		return false
	}
}

// IsLocal reports whether the provider is a self-hosted inference server
func (p Provider) IsLocal() bool {
	return p == ProviderOllama
}

// ParseProvider converts a raw string into a Provider
func ParseProvider(value string) (Provider, error) {
	p := Provider(value)
	if !p.Valid() {
		return "", fmt.Errorf("unknown provider: %q", value)
	}
	return p, nil
}

// ProviderSettings holds the per-provider connection values.
// Endpoint is only meaningful for the local provider.
type ProviderSettings struct {
	Endpoint string `json:"endpoint,omitempty"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key,omitempty"`
}

// HasCredential reports whether an API key is configured
func (s ProviderSettings) HasCredential() bool {
	return s.APIKey != ""
}

// ModelInfo describes a model offered by a provider
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConnectionState is the outcome of a provider status check
type ConnectionState string

const (
	StateConnected    ConnectionState = "connected"
	StateDisconnected ConnectionState = "disconnected"
)

// ProviderStatus is returned by status checks
type ProviderStatus struct {
	State    ConnectionState `json:"status"`
	Provider Provider        `json:"provider"`
	Error    string          `json:"error,omitempty"`
}
