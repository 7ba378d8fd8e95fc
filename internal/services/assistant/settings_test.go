package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/ai"
	"github.com/benvon/plume/internal/validation"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestNewSettingsView_MasksKeys(t *testing.T) {
	t.Parallel()

	prefs := models.DefaultPreferences()
	prefs.Providers[models.ProviderOpenAI] = models.ProviderSettings{Model: "gpt-4o", APIKey: "sk-proj-1234567890abcdef"}

	view := NewSettingsView(&prefs)
	openai := view.Settings[models.ProviderOpenAI]
	if strings.Contains(openai.APIKey, "1234567890") {
		t.Errorf("API key leaked: %q", openai.APIKey)
	}
	if !openai.HasAPIKey {
		t.Error("expected HasAPIKey")
	}
	if view.Settings[models.ProviderAnthropic].HasAPIKey {
		t.Error("anthropic has no key")
	}
	if view.Settings[models.ProviderOllama].URL != models.DefaultOllamaURL {
		t.Errorf("unexpected ollama url %q", view.Settings[models.ProviderOllama].URL)
	}
	if len(view.Settings) != len(models.AllProviders()) {
		t.Errorf("expected every provider in the view, got %d", len(view.Settings))
	}
}

func TestService_UpdateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      UpdateSettingsRequest
		wantErr  bool
		validate func(*testing.T, *models.Preferences)
	}{
		{
			name: "switch provider and store key",
			req: UpdateSettingsRequest{
				Provider: "openai",
				Settings: &ProviderSettingsInput{APIKey: strPtr(" sk-new "), Model: strPtr("gpt-4o")},
			},
			validate: func(t *testing.T, p *models.Preferences) {
				if p.ActiveProvider != models.ProviderOpenAI {
					t.Errorf("expected openai, got %s", p.ActiveProvider)
				}
				s := p.Settings(models.ProviderOpenAI)
				if s.APIKey != "sk-new" || s.Model != "gpt-4o" {
					t.Errorf("unexpected openai settings %+v", s)
				}
			},
		},
		{
			name: "url always targets the local provider",
			req: UpdateSettingsRequest{
				Provider: "groq",
				Settings: &ProviderSettingsInput{URL: strPtr("http://gpu-box:11434/")},
			},
			validate: func(t *testing.T, p *models.Preferences) {
				if got := p.Settings(models.ProviderOllama).Endpoint; got != "http://gpu-box:11434" {
					t.Errorf("unexpected ollama endpoint %q", got)
				}
				if p.Settings(models.ProviderGroq).Endpoint != "" {
					t.Error("vendors have no endpoint")
				}
			},
		},
		{
			name: "masked key is ignored",
			req: UpdateSettingsRequest{
				Provider: "openai",
				Settings: &ProviderSettingsInput{APIKey: strPtr("sk-o" + ai.RedactedValue + "abcd")},
			},
			validate: func(t *testing.T, p *models.Preferences) {
				if p.Settings(models.ProviderOpenAI).APIKey != "" {
					t.Error("masked value must not be stored")
				}
			},
		},
		{
			name: "prompts rules and emojis",
			req: UpdateSettingsRequest{
				Prompts:     &PromptsInput{System: strPtr("Sois bref."), Translation: strPtr("En {target_language} :")},
				SyntaxRules: &models.SyntaxRulesPatch{VerbTense: boolPtr(false)},
				UseEmojis:   boolPtr(true),
			},
			validate: func(t *testing.T, p *models.Preferences) {
				if p.SystemPrompt != "Sois bref." || p.TranslationPrompt != "En {target_language} :" {
					t.Errorf("prompts not applied: %q %q", p.SystemPrompt, p.TranslationPrompt)
				}
				if p.EmailPrompt != models.DefaultEmailPrompt {
					t.Error("untouched prompt changed")
				}
				if p.SyntaxRules.VerbTense || !p.SyntaxRules.WordOrder {
					t.Errorf("unexpected rules %+v", p.SyntaxRules)
				}
				if !p.UseEmojis {
					t.Error("expected use_emojis")
				}
				if p.ActiveProvider != models.ProviderOllama {
					t.Error("active provider must not change")
				}
			},
		},
		{
			name:    "unknown provider",
			req:     UpdateSettingsRequest{Provider: "mistral"},
			wantErr: true,
		},
		{
			name:    "model without provider",
			req:     UpdateSettingsRequest{Settings: &ProviderSettingsInput{Model: strPtr("x")}},
			wantErr: true,
		},
		{
			name:    "translation prompt without placeholder",
			req:     UpdateSettingsRequest{Prompts: &PromptsInput{Translation: strPtr("Traduis.")}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, models.ProviderOllama, "")
			prefs, err := f.service.UpdateSettings(context.Background(), tt.req)
			if tt.wantErr {
				if !validation.IsValidationError(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.validate(t, prefs)
		})
	}
}

func TestService_ListModels(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "")

	list, err := f.service.ListModels(context.Background(), "ollama", "http://other:11434/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "local-model" {
		t.Errorf("unexpected models %+v", list)
	}

	if _, err := f.service.ListModels(context.Background(), "mistral", ""); !validation.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	var notFound *ai.ErrProviderNotFound
	if _, err := f.service.ListModels(context.Background(), "openai", ""); !errors.As(err, &notFound) {
		t.Errorf("expected ErrProviderNotFound for an unregistered provider, got %v", err)
	}
}

func TestService_CheckStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "")
	f.adapter.status = models.ProviderStatus{State: models.StateConnected, Provider: models.ProviderOllama}

	status, err := f.service.CheckStatus(context.Background(), "http://override:11434/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != models.StateConnected {
		t.Errorf("unexpected status %+v", status)
	}
	if f.adapter.lastSet.Endpoint != "http://override:11434" {
		t.Errorf("override not applied: %q", f.adapter.lastSet.Endpoint)
	}
}
