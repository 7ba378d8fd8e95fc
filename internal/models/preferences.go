package models

import (
	"time"

	"github.com/google/uuid"
)

// Default prompt templates. The translation template must keep the
// {target_language} placeholder.
const (
	DefaultSystemPrompt = `Tu es un expert en reformulation. Tu dois reformuler le texte selon les paramètres spécifiés par l'utilisateur: ton, format et longueur. IMPORTANT : retourne UNIQUEMENT le texte reformulé, sans aucune mention des paramètres.
Respecte scrupuleusement le format demandé, la longueur et le ton. Ne rajoute aucun autre commentaire.
Si un contexte ou un email reçu est fourni, utilise-le pour mieux adapter la reformulation.`

	DefaultTranslationPrompt = `Tu es un traducteur automatique. Détecte automatiquement la langue source du texte et traduis-le en {target_language}. Retourne UNIQUEMENT la traduction, sans aucun autre commentaire.`

	DefaultEmailPrompt = `Tu es un expert en rédaction d'emails professionnels. Génère un email selon le type et le contexte fourni. L'email doit être professionnel, bien structuré et adapté au contexte. IMPORTANT : retourne UNIQUEMENT l'email généré, avec l'objet en première ligne commençant par 'Objet:'.`

	DefaultCorrectionPrompt = `Tu es un correcteur de texte professionnel. Corrige le texte fourni en respectant les options sélectionnées ci-dessous.
Retourne UNIQUEMENT le texte corrigé, sans aucun autre commentaire.`

	// TargetLanguagePlaceholder is substituted in the translation template
	TargetLanguagePlaceholder = "{target_language}"
)

// Default provider values used when nothing else seeds the preferences row
const (
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultOllamaModel    = "qwen2.5:3b"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultGroqModel      = "llama-3.1-8b-instant"
	DefaultGeminiModel    = "gemini-1.5-flash"
)

// SyntaxRules toggles the grammar-correction sub-rules
type SyntaxRules struct {
	WordOrder            bool `json:"word_order"`
	SubjectVerbAgreement bool `json:"subject_verb_agreement"`
	VerbTense            bool `json:"verb_tense"`
	GenderNumber         bool `json:"gender_number"`
	RelativePronouns     bool `json:"relative_pronouns"`
}

// DefaultSyntaxRules enables every rule
func DefaultSyntaxRules() SyntaxRules {
	return SyntaxRules{
		WordOrder:            true,
		SubjectVerbAgreement: true,
		VerbTense:            true,
		GenderNumber:         true,
		RelativePronouns:     true,
	}
}

// Preferences is the single persisted configuration record
type Preferences struct {
	ID                uuid.UUID                     `json:"id"`
	ActiveProvider    Provider                      `json:"active_provider"`
	Providers         map[Provider]ProviderSettings `json:"providers"`
	SystemPrompt      string                        `json:"system_prompt"`
	TranslationPrompt string                        `json:"translation_prompt"`
	EmailPrompt       string                        `json:"email_prompt"`
	CorrectionPrompt  string                        `json:"correction_prompt"`
	SyntaxRules       SyntaxRules                   `json:"syntax_rules"`
	UseEmojis         bool                          `json:"use_emojis"`
	CreatedAt         time.Time                     `json:"created_at"`
	UpdatedAt         time.Time                     `json:"updated_at"`
}

// DefaultPreferences returns the hard-coded defaults
func DefaultPreferences() Preferences {
	return Preferences{
		ActiveProvider: ProviderOllama,
		Providers: map[Provider]ProviderSettings{
			ProviderOllama:    {Endpoint: DefaultOllamaURL, Model: DefaultOllamaModel},
			ProviderOpenAI:    {Model: DefaultOpenAIModel},
			ProviderAnthropic: {Model: DefaultAnthropicModel},
			ProviderGroq:      {Model: DefaultGroqModel},
			ProviderGemini:    {Model: DefaultGeminiModel},
		},
		SystemPrompt:      DefaultSystemPrompt,
		TranslationPrompt: DefaultTranslationPrompt,
		EmailPrompt:       DefaultEmailPrompt,
		CorrectionPrompt:  DefaultCorrectionPrompt,
		SyntaxRules:       DefaultSyntaxRules(),
	}
}

// Settings returns the settings of provider p (zero value when absent)
func (p *Preferences) Settings(provider Provider) ProviderSettings {
	if p.Providers == nil {
		return ProviderSettings{}
	}
	return p.Providers[provider]
}

// ActiveSettings returns the settings of the active provider
func (p *Preferences) ActiveSettings() ProviderSettings {
	return p.Settings(p.ActiveProvider)
}

// ProviderSettingsPatch carries optional per-provider changes
type ProviderSettingsPatch struct {
	Endpoint *string `json:"url,omitempty"`
	Model    *string `json:"model,omitempty"`
	APIKey   *string `json:"apiKey,omitempty"`
}

// SyntaxRulesPatch carries optional syntax-rule changes
type SyntaxRulesPatch struct {
	WordOrder            *bool `json:"word_order,omitempty"`
	SubjectVerbAgreement *bool `json:"subject_verb_agreement,omitempty"`
	VerbTense            *bool `json:"verb_tense,omitempty"`
	GenderNumber         *bool `json:"gender_number,omitempty"`
	RelativePronouns     *bool `json:"relative_pronouns,omitempty"`
}

// PreferencesPatch is a partial update; nil fields are left untouched
type PreferencesPatch struct {
	ActiveProvider    *Provider
	Providers         map[Provider]ProviderSettingsPatch
	SystemPrompt      *string
	TranslationPrompt *string
	EmailPrompt       *string
	CorrectionPrompt  *string
	SyntaxRules       *SyntaxRulesPatch
	UseEmojis         *bool
}

// IsEmpty reports whether the patch changes nothing
func (p PreferencesPatch) IsEmpty() bool {
	return p.ActiveProvider == nil && len(p.Providers) == 0 &&
		p.SystemPrompt == nil && p.TranslationPrompt == nil &&
		p.EmailPrompt == nil && p.CorrectionPrompt == nil &&
		p.SyntaxRules == nil && p.UseEmojis == nil
}

// Apply merges the patch into prefs. The caller validates provider names first.
func (p PreferencesPatch) Apply(prefs *Preferences) {
	if p.ActiveProvider != nil {
		prefs.ActiveProvider = *p.ActiveProvider
	}
	if len(p.Providers) > 0 && prefs.Providers == nil {
		prefs.Providers = make(map[Provider]ProviderSettings)
	}
	for provider, change := range p.Providers {
		current := prefs.Providers[provider]
		if change.Endpoint != nil {
			current.Endpoint = *change.Endpoint
		}
		if change.Model != nil {
			current.Model = *change.Model
		}
		if change.APIKey != nil {
			current.APIKey = *change.APIKey
		}
		prefs.Providers[provider] = current
	}
	if p.SystemPrompt != nil {
		prefs.SystemPrompt = *p.SystemPrompt
	}
	if p.TranslationPrompt != nil {
		prefs.TranslationPrompt = *p.TranslationPrompt
	}
	if p.EmailPrompt != nil {
		prefs.EmailPrompt = *p.EmailPrompt
	}
	if p.CorrectionPrompt != nil {
		prefs.CorrectionPrompt = *p.CorrectionPrompt
	}
	if p.SyntaxRules != nil {
		p.SyntaxRules.apply(&prefs.SyntaxRules)
	}
	if p.UseEmojis != nil {
		prefs.UseEmojis = *p.UseEmojis
	}
}

func (p *SyntaxRulesPatch) apply(rules *SyntaxRules) {
	if p.WordOrder != nil {
		rules.WordOrder = *p.WordOrder
	}
	if p.SubjectVerbAgreement != nil {
		rules.SubjectVerbAgreement = *p.SubjectVerbAgreement
	}
	if p.VerbTense != nil {
		rules.VerbTense = *p.VerbTense
	}
	if p.GenderNumber != nil {
		rules.GenderNumber = *p.GenderNumber
	}
	if p.RelativePronouns != nil {
		rules.RelativePronouns = *p.RelativePronouns
	}
}
