package prompt

import (
	"strings"
	"testing"

	"github.com/benvon/plume/internal/models"
)

func defaultPrefs() *models.Preferences {
	prefs := models.DefaultPreferences()
	return &prefs
}

func TestReformulation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    ReformulationInput
		validate func(*testing.T, Prompt)
	}{
		{
			name: "renders every field",
			input: ReformulationInput{
				Text: "salut", Context: "mail du client", Tone: "Professionnel", Format: "Paragraphe", Length: "Court",
			},
			validate: func(t *testing.T, p Prompt) {
				want := "Contexte: mail du client\nTexte à reformuler: salut\nTon: Professionnel\nFormat: Paragraphe\nLongueur: Court"
				if p.User != want {
					t.Errorf("unexpected user prompt:\n%s", p.User)
				}
				if !strings.HasPrefix(p.System, models.DefaultSystemPrompt) {
					t.Error("system prompt should start with the stored template")
				}
				if strings.Contains(p.System, "Objet:") {
					t.Error("email checklist must only appear for the email format")
				}
			},
		},
		{
			name:  "omits empty context",
			input: ReformulationInput{Text: "salut", Tone: "Neutre", Format: "Paragraphe", Length: "Moyen"},
			validate: func(t *testing.T, p Prompt) {
				if strings.Contains(p.User, "Contexte:") {
					t.Error("context line should be omitted")
				}
				if !strings.HasPrefix(p.User, "Texte à reformuler: salut\n") {
					t.Errorf("unexpected user prompt:\n%s", p.User)
				}
			},
		},
		{
			name:  "email format appends checklist",
			input: ReformulationInput{Text: "x", Tone: "Neutre", Format: "Email", Length: "Moyen"},
			validate: func(t *testing.T, p Prompt) {
				for _, part := range []string{"Objet:", "salutation", "clôture", "signature"} {
					if !strings.Contains(p.System, part) {
						t.Errorf("checklist missing %q", part)
					}
				}
			},
		},
		{
			name:  "emoji instruction follows the flag",
			input: ReformulationInput{Text: "x", UseEmojis: true},
			validate: func(t *testing.T, p Prompt) {
				if !strings.HasSuffix(p.System, emojiOn) {
					t.Error("expected emoji instruction")
				}
			},
		},
		{
			name:  "no emoji by default",
			input: ReformulationInput{Text: "x"},
			validate: func(t *testing.T, p Prompt) {
				if !strings.HasSuffix(p.System, emojiOff) {
					t.Error("expected no-emoji instruction")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.validate(t, Reformulation(defaultPrefs(), tt.input))
		})
	}
}

func TestTranslation(t *testing.T) {
	t.Parallel()

	prefs := defaultPrefs()
	prefs.TranslationPrompt = "Traduis en {target_language}. Uniquement en {target_language}."

	p := Translation(prefs, TranslationInput{Text: "Bonjour le monde", TargetLanguage: "Anglais"})
	if p.System != "Traduis en Anglais. Uniquement en Anglais." {
		t.Errorf("unexpected system prompt %q", p.System)
	}
	if p.User != "Bonjour le monde" {
		t.Errorf("user prompt should be the raw text, got %q", p.User)
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input EmailInput
		want  string
	}{
		{
			name:  "without tone",
			input: EmailInput{Type: "relance", Content: "facture 42", Sender: "Marie"},
			want:  "Type d'email: relance\nContenu: facture 42\nExpéditeur: Marie",
		},
		{
			name:  "with tone",
			input: EmailInput{Type: "remerciement", Content: "merci", Tone: "chaleureux"},
			want:  "Type d'email: remerciement\nContenu: merci\nExpéditeur: \nTon: chaleureux",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := Email(defaultPrefs(), tt.input)
			if p.User != tt.want {
				t.Errorf("expected %q, got %q", tt.want, p.User)
			}
			if p.System != models.DefaultEmailPrompt {
				t.Error("system prompt should be the stored email template")
			}
		})
	}
}

func TestCorrection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		prefs       func(*models.Preferences)
		options     models.CorrectionOptions
		contains    []string
		notContains []string
	}{
		{
			name:        "defaults when nothing selected",
			contains:    []string{grammarLine, spellingLine, punctuationLine, styleLine},
			notContains: []string{syntaxLine, synonymsLine, SynonymsSectionMarker},
		},
		{
			name:        "only spelling",
			options:     models.CorrectionOptions{Spelling: true},
			contains:    []string{spellingLine},
			notContains: []string{grammarLine, styleLine, punctuationLine},
		},
		{
			name:     "synonyms mandate the section format",
			options:  models.CorrectionOptions{Synonyms: true},
			contains: []string{synonymsLine, CorrectedSectionMarker, SynonymsSectionMarker},
		},
		{
			name:     "syntax lists stored rules",
			options:  models.CorrectionOptions{Syntax: true},
			contains: []string{syntaxLine, "l'ordre des mots", "l'accord sujet-verbe", "pronoms relatifs"},
		},
		{
			name: "stored rule disabled",
			prefs: func(p *models.Preferences) {
				p.SyntaxRules.VerbTense = false
			},
			options:     models.CorrectionOptions{Syntax: true},
			contains:    []string{"l'ordre des mots"},
			notContains: []string{"la concordance des temps"},
		},
		{
			name: "request rules override stored rules",
			options: models.CorrectionOptions{
				Syntax:      true,
				SyntaxRules: &models.SyntaxRules{VerbTense: true},
			},
			contains:    []string{"la concordance des temps"},
			notContains: []string{"l'ordre des mots", "l'accord sujet-verbe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prefs := defaultPrefs()
			if tt.prefs != nil {
				tt.prefs(prefs)
			}
			p := Correction(prefs, CorrectionInput{Text: "je mange des pomme", Options: tt.options})

			if !strings.HasPrefix(p.System, models.DefaultCorrectionPrompt) {
				t.Error("system prompt should start with the stored template")
			}
			for _, s := range tt.contains {
				if !strings.Contains(p.System, s) {
					t.Errorf("expected system prompt to contain %q", s)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(p.System, s) {
					t.Errorf("expected system prompt not to contain %q", s)
				}
			}
			if p.User != "Texte à corriger: je mange des pomme" {
				t.Errorf("unexpected user prompt %q", p.User)
			}
		})
	}
}
