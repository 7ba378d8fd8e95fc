// Package prompt turns operation inputs and stored templates into the
// (system, user) prompt pair sent to a provider, and parses the parts of
// model output that callers need back.
package prompt

import (
	"strings"

	"github.com/benvon/plume/internal/models"
)

// Prompt is the pair of texts sent to a provider
type Prompt struct {
	System string
	User   string
}

// ReformulationInput holds the fields of a reformulation request
type ReformulationInput struct {
	Text      string
	Context   string
	Tone      string
	Format    string
	Length    string
	UseEmojis bool
}

// TranslationInput holds the fields of a translation request
type TranslationInput struct {
	Text           string
	TargetLanguage string
}

// CorrectionInput holds the fields of a correction request
type CorrectionInput struct {
	Text    string
	Options models.CorrectionOptions
}

// EmailInput holds the fields of an email generation request
type EmailInput struct {
	Type    string
	Content string
	Sender  string
	Tone    string
}

const (
	// FormatEmail triggers the email structure checklist in reformulations
	FormatEmail = "email"

	// CorrectedSectionMarker opens the corrected text section of a synonyms answer
	CorrectedSectionMarker = "===TEXTE CORRIGÉ==="
	// SynonymsSectionMarker opens the synonyms section of a synonyms answer
	SynonymsSectionMarker = "===SYNONYMES==="
)

const emailChecklist = `Le texte doit être structuré comme un email :
- une ligne d'objet commençant par "Objet:"
- une formule de salutation adaptée
- un corps de message clair et structuré en paragraphes
- une formule de politesse de clôture
- une signature`

const (
	emojiOn  = "Ajoute des emojis pertinents et avec parcimonie pour rendre le texte plus vivant."
	emojiOff = "N'utilise aucun emoji."
)

// Reformulation builds the prompt for a reformulation request
func Reformulation(prefs *models.Preferences, in ReformulationInput) Prompt {
	var system strings.Builder
	system.WriteString(prefs.SystemPrompt)
	if strings.EqualFold(strings.TrimSpace(in.Format), FormatEmail) {
		system.WriteString("\n\n")
		system.WriteString(emailChecklist)
	}
	system.WriteString("\n\n")
	if in.UseEmojis {
		system.WriteString(emojiOn)
	} else {
		system.WriteString(emojiOff)
	}

	var user strings.Builder
	if strings.TrimSpace(in.Context) != "" {
		user.WriteString("Contexte: " + in.Context + "\n")
	}
	user.WriteString("Texte à reformuler: " + in.Text + "\n")
	user.WriteString("Ton: " + in.Tone + "\n")
	user.WriteString("Format: " + in.Format + "\n")
	user.WriteString("Longueur: " + in.Length)

	return Prompt{System: system.String(), User: user.String()}
}

// Translation builds the prompt for a translation request. Every occurrence
// of the target language placeholder is substituted; the user prompt is the
// raw text.
func Translation(prefs *models.Preferences, in TranslationInput) Prompt {
	return Prompt{
		System: strings.ReplaceAll(prefs.TranslationPrompt, models.TargetLanguagePlaceholder, in.TargetLanguage),
		User:   in.Text,
	}
}

// Email builds the prompt for an email generation request
func Email(prefs *models.Preferences, in EmailInput) Prompt {
	var user strings.Builder
	user.WriteString("Type d'email: " + in.Type + "\n")
	user.WriteString("Contenu: " + in.Content + "\n")
	user.WriteString("Expéditeur: " + in.Sender)
	if strings.TrimSpace(in.Tone) != "" {
		user.WriteString("\nTon: " + in.Tone)
	}
	return Prompt{System: prefs.EmailPrompt, User: user.String()}
}

// correction category instructions
const (
	grammarLine     = "- Grammaire : corrige les fautes de grammaire."
	spellingLine    = "- Orthographe : corrige les fautes d'orthographe."
	styleLine       = "- Style : améliore la fluidité et la clarté sans changer le sens."
	punctuationLine = "- Ponctuation : corrige la ponctuation."
	syntaxLine      = "- Syntaxe : corrige la structure des phrases."
	synonymsLine    = "- Synonymes : propose des synonymes pour les mots importants ou répétés."
)

var syntaxRuleLines = []struct {
	enabled func(models.SyntaxRules) bool
	line    string
}{
	{func(r models.SyntaxRules) bool { return r.WordOrder }, "  - l'ordre des mots"},
	{func(r models.SyntaxRules) bool { return r.SubjectVerbAgreement }, "  - l'accord sujet-verbe"},
	{func(r models.SyntaxRules) bool { return r.VerbTense }, "  - la concordance des temps"},
	{func(r models.SyntaxRules) bool { return r.GenderNumber }, "  - les accords en genre et en nombre"},
	{func(r models.SyntaxRules) bool { return r.RelativePronouns }, "  - l'usage des pronoms relatifs"},
}

const synonymsFormat = `Format de réponse OBLIGATOIRE :
` + CorrectedSectionMarker + `
<le texte corrigé>
` + SynonymsSectionMarker + `
mot: synonyme1, synonyme2, synonyme3`

// Correction builds the prompt for a correction request. With no category
// selected, grammar, spelling, punctuation and style are applied. Syntax
// rules sent with the request take precedence over the stored ones.
func Correction(prefs *models.Preferences, in CorrectionInput) Prompt {
	opts := in.Options
	if !opts.Grammar && !opts.Spelling && !opts.Style && !opts.Punctuation && !opts.Syntax && !opts.Synonyms {
		opts.Grammar, opts.Spelling, opts.Punctuation, opts.Style = true, true, true, true
	}

	rules := prefs.SyntaxRules
	if opts.SyntaxRules != nil {
		rules = *opts.SyntaxRules
	}

	lines := []string{prefs.CorrectionPrompt, "", "Corrections à appliquer :"}
	if opts.Grammar {
		lines = append(lines, grammarLine)
	}
	if opts.Spelling {
		lines = append(lines, spellingLine)
	}
	if opts.Style {
		lines = append(lines, styleLine)
	}
	if opts.Punctuation {
		lines = append(lines, punctuationLine)
	}
	if opts.Syntax {
		lines = append(lines, syntaxLine)
		var active []string
		for _, rule := range syntaxRuleLines {
			if rule.enabled(rules) {
				active = append(active, rule.line)
			}
		}
		if len(active) > 0 {
			lines = append(lines, "  Vérifie en particulier :")
			lines = append(lines, active...)
		}
	}
	if opts.Synonyms {
		lines = append(lines, synonymsLine, "", synonymsFormat)
	}

	return Prompt{
		System: strings.Join(lines, "\n"),
		User:   "Texte à corriger: " + in.Text,
	}
}
