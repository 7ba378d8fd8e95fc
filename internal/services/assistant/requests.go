package assistant

import (
	"github.com/benvon/plume/internal/models"
)

// Reformulation defaults applied when the caller leaves a field empty
const (
	DefaultTone   = "Neutre"
	DefaultFormat = "Paragraphe"
	DefaultLength = "Moyen"
)

// ReformulateRequest is the input of a reformulation
type ReformulateRequest struct {
	Text      string `json:"text" validate:"notblank"`
	Context   string `json:"context"`
	Tone      string `json:"tone" validate:"max=100"`
	Format    string `json:"format" validate:"max=100"`
	Length    string `json:"length" validate:"max=100"`
	UseEmojis *bool  `json:"use_emojis"`
}

// HistoryRequest selects the stored records of one kind
type HistoryRequest struct {
	Kind  string `json:"kind" validate:"required,history_kind"`
	Limit int    `json:"limit"`
}

// TranslateRequest is the input of a translation
type TranslateRequest struct {
	Text           string `json:"text" validate:"notblank"`
	Language       string `json:"language" validate:"notblank,max=100"`
	SourceLanguage string `json:"source_language" validate:"max=100"`
}

// CorrectRequest is the input of a correction
type CorrectRequest struct {
	Text    string                   `json:"text" validate:"notblank"`
	Options models.CorrectionOptions `json:"options"`
}

// EmailRequest is the input of an email generation
type EmailRequest struct {
	Type    string `json:"type" validate:"notblank,max=100"`
	Content string `json:"content" validate:"notblank"`
	Sender  string `json:"sender" validate:"max=200"`
	Tone    string `json:"tone" validate:"max=100"`
}

// Result is the outcome of a text generation
type Result struct {
	Text string `json:"text"`
}

// CorrectionResult carries the corrected text and any parsed synonyms
type CorrectionResult struct {
	Text     string              `json:"text"`
	Synonyms map[string][]string `json:"synonyms,omitempty"`
}

// EmailResult carries the generated email and its parsed subject
type EmailResult struct {
	Text    string `json:"text"`
	Subject string `json:"subject"`
}

// HistorySummary groups recent records by kind
type HistorySummary struct {
	Reformulations []*models.HistoryRecord `json:"reformulations"`
	Translations   []*models.HistoryRecord `json:"translations"`
	Corrections    []*models.HistoryRecord `json:"corrections"`
	Emails         []*models.HistoryRecord `json:"emails"`
}
