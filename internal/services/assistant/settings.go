package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/ai"
	"github.com/benvon/plume/internal/validation"
)

// ProviderSettingsView is one provider's settings with the key masked
type ProviderSettingsView struct {
	URL       string `json:"url,omitempty"`
	Model     string `json:"model"`
	APIKey    string `json:"apiKey,omitempty"`
	HasAPIKey bool   `json:"has_api_key"`
}

// PromptsView exposes the editable prompt templates
type PromptsView struct {
	System      string `json:"system"`
	Translation string `json:"translation"`
	Email       string `json:"email"`
	Correction  string `json:"correction"`
}

// SettingsView is the client-facing shape of the preferences. Credentials
// are never returned in clear.
type SettingsView struct {
	Provider    models.Provider                          `json:"provider"`
	Settings    map[models.Provider]ProviderSettingsView `json:"settings"`
	Prompts     PromptsView                              `json:"prompts"`
	SyntaxRules models.SyntaxRules                       `json:"syntax_rules"`
	UseEmojis   bool                                     `json:"use_emojis"`
	UpdatedAt   time.Time                                `json:"updated_at"`
}

// NewSettingsView builds the masked view of prefs
func NewSettingsView(prefs *models.Preferences) SettingsView {
	view := SettingsView{
		Provider: prefs.ActiveProvider,
		Settings: make(map[models.Provider]ProviderSettingsView, len(models.AllProviders())),
		Prompts: PromptsView{
			System:      prefs.SystemPrompt,
			Translation: prefs.TranslationPrompt,
			Email:       prefs.EmailPrompt,
			Correction:  prefs.CorrectionPrompt,
		},
		SyntaxRules: prefs.SyntaxRules,
		UseEmojis:   prefs.UseEmojis,
		UpdatedAt:   prefs.UpdatedAt,
	}
	for _, provider := range models.AllProviders() {
		settings := prefs.Settings(provider)
		view.Settings[provider] = ProviderSettingsView{
			URL:       settings.Endpoint,
			Model:     settings.Model,
			APIKey:    ai.SanitizeAPIKey(settings.APIKey),
			HasAPIKey: settings.HasCredential(),
		}
	}
	return view
}

// ProviderSettingsInput carries the per-provider fields of a settings update
type ProviderSettingsInput struct {
	URL    *string `json:"url"`
	APIKey *string `json:"apiKey"`
	Model  *string `json:"model"`
}

// PromptsInput carries prompt template changes
type PromptsInput struct {
	System      *string `json:"system"`
	Translation *string `json:"translation"`
	Email       *string `json:"email"`
	Correction  *string `json:"correction"`
}

// UpdateSettingsRequest is a partial settings update. Provider, when set,
// becomes the active provider and is the target of Settings.
type UpdateSettingsRequest struct {
	Provider    string                   `json:"provider" validate:"omitempty,provider"`
	Settings    *ProviderSettingsInput   `json:"settings"`
	Prompts     *PromptsInput            `json:"prompts"`
	SyntaxRules *models.SyntaxRulesPatch `json:"syntax_rules"`
	UseEmojis   *bool                    `json:"use_emojis"`
}

// Settings returns the stored preferences
func (s *Service) Settings(ctx context.Context) (*models.Preferences, error) {
	return s.prefs.GetOrCreate(ctx)
}

// UpdateSettings applies a partial settings update. Endpoint URLs always
// belong to the local provider. An API key still carrying the mask from a
// previous read is ignored so a round-tripped form never overwrites the
// stored credential.
func (s *Service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*models.Preferences, error) {
	patch, err := req.toPatch()
	if err != nil {
		return nil, err
	}
	return s.prefs.Update(ctx, patch)
}

func (req UpdateSettingsRequest) toPatch() (models.PreferencesPatch, error) {
	if err := validation.Struct(req); err != nil {
		return models.PreferencesPatch{}, err
	}

	var patch models.PreferencesPatch
	if req.Provider != "" {
		provider := models.Provider(req.Provider)
		patch.ActiveProvider = &provider
	}

	if in := req.Settings; in != nil {
		if patch.ActiveProvider == nil && (in.APIKey != nil || in.Model != nil) {
			return patch, validation.NewValidationError("provider", "is required when updating model or apiKey")
		}
		patch.Providers = make(map[models.Provider]models.ProviderSettingsPatch)
		if in.URL != nil {
			url := strings.TrimRight(strings.TrimSpace(*in.URL), "/")
			local := patch.Providers[models.ProviderOllama]
			local.Endpoint = &url
			patch.Providers[models.ProviderOllama] = local
		}
		if patch.ActiveProvider != nil {
			target := *patch.ActiveProvider
			change := patch.Providers[target]
			if in.Model != nil {
				model := strings.TrimSpace(*in.Model)
				change.Model = &model
			}
			if in.APIKey != nil && !strings.Contains(*in.APIKey, ai.RedactedValue) {
				key := strings.TrimSpace(*in.APIKey)
				change.APIKey = &key
			}
			if change != (models.ProviderSettingsPatch{}) {
				patch.Providers[target] = change
			}
		}
	}

	if in := req.Prompts; in != nil {
		if in.Translation != nil && !strings.Contains(*in.Translation, models.TargetLanguagePlaceholder) {
			return patch, validation.NewValidationError("prompts.translation", "must contain %s", models.TargetLanguagePlaceholder)
		}
		patch.SystemPrompt = sanitized(in.System)
		patch.TranslationPrompt = sanitized(in.Translation)
		patch.EmailPrompt = sanitized(in.Email)
		patch.CorrectionPrompt = sanitized(in.Correction)
	}

	patch.SyntaxRules = req.SyntaxRules
	patch.UseEmojis = req.UseEmojis
	return patch, nil
}

// ListModels returns the models of provider. urlOverride replaces the
// stored endpoint for the local provider only.
func (s *Service) ListModels(ctx context.Context, provider, urlOverride string) ([]models.ModelInfo, error) {
	p, err := validation.ValidateProvider(provider)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	return s.catalog.ListModels(ctx, p, withEndpoint(p, prefs.Settings(p), urlOverride))
}

// CheckStatus probes the active provider. urlOverride replaces the stored
// endpoint when the active provider is local.
func (s *Service) CheckStatus(ctx context.Context, urlOverride string) (models.ProviderStatus, error) {
	prefs, err := s.prefs.GetOrCreate(ctx)
	if err != nil {
		return models.ProviderStatus{}, err
	}
	adapter, err := s.registry.Get(prefs.ActiveProvider)
	if err != nil {
		return models.ProviderStatus{}, err
	}
	settings := withEndpoint(prefs.ActiveProvider, prefs.ActiveSettings(), urlOverride)
	return adapter.CheckStatus(ctx, settings), nil
}

// sanitized strips control characters from an optional prompt template
func sanitized(value *string) *string {
	if value == nil {
		return nil
	}
	clean := validation.SanitizeText(*value)
	return &clean
}

func withEndpoint(provider models.Provider, settings models.ProviderSettings, urlOverride string) models.ProviderSettings {
	if provider.IsLocal() && strings.TrimSpace(urlOverride) != "" {
		settings.Endpoint = strings.TrimRight(strings.TrimSpace(urlOverride), "/")
	}
	return settings
}
