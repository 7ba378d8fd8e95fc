package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryKind discriminates history records by operation
type HistoryKind string

const (
	HistoryReformulation HistoryKind = "reformulation"
	HistoryTranslation   HistoryKind = "translation"
	HistoryCorrection    HistoryKind = "correction"
	HistoryEmail         HistoryKind = "email"
)

// AllHistoryKinds lists every history kind
func AllHistoryKinds() []HistoryKind {
	return []HistoryKind{HistoryReformulation, HistoryTranslation, HistoryCorrection, HistoryEmail}
}

// Valid reports whether k is a known kind
func (k HistoryKind) Valid() bool {
	switch k {
	case HistoryReformulation, HistoryTranslation, HistoryCorrection, HistoryEmail:
		return true
	default:
		return false
	}
}

// ReformulationDetails are the fields specific to reformulations
type ReformulationDetails struct {
	Context string `json:"context,omitempty"`
	Tone    string `json:"tone"`
	Format  string `json:"format"`
	Length  string `json:"length"`
}

// TranslationDetails are the fields specific to translations
type TranslationDetails struct {
	TargetLanguage string `json:"target_language"`
	SourceLanguage string `json:"source_language,omitempty"`
}

// CorrectionDetails are the fields specific to corrections
type CorrectionDetails struct {
	Options  CorrectionOptions   `json:"options"`
	Synonyms map[string][]string `json:"synonyms,omitempty"`
}

// EmailDetails are the fields specific to generated emails
type EmailDetails struct {
	EmailType string `json:"email_type"`
	Sender    string `json:"sender,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Content   string `json:"content"`
}

// CorrectionOptions selects which correction categories are requested
type CorrectionOptions struct {
	Grammar     bool         `json:"grammar"`
	Spelling    bool         `json:"spelling"`
	Style       bool         `json:"style"`
	Punctuation bool         `json:"punctuation"`
	Syntax      bool         `json:"syntax"`
	Synonyms    bool         `json:"synonyms"`
	SyntaxRules *SyntaxRules `json:"syntax_rules,omitempty"`
}

// HistoryRecord is one completed generation. Exactly one details pointer is
// set, matching Kind; the embedded structs flatten into the JSON output.
type HistoryRecord struct {
	ID            uuid.UUID   `json:"id"`
	Kind          HistoryKind `json:"kind"`
	OriginalText  string      `json:"original_text"`
	GeneratedText string      `json:"generated_text"`
	CreatedAt     time.Time   `json:"created_at"`

	*ReformulationDetails
	*TranslationDetails
	*CorrectionDetails
	*EmailDetails
}

// MarshalDetails encodes the variant fields for storage
func (r *HistoryRecord) MarshalDetails() ([]byte, error) {
	var details any
	switch r.Kind {
	case HistoryReformulation:
		details = r.ReformulationDetails
	case HistoryTranslation:
		details = r.TranslationDetails
	case HistoryCorrection:
		details = r.CorrectionDetails
	case HistoryEmail:
		details = r.EmailDetails
	default:
		return nil, fmt.Errorf("unknown history kind: %q", r.Kind)
	}
	if details == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(details)
}

// UnmarshalDetails decodes stored variant fields according to Kind
func (r *HistoryRecord) UnmarshalDetails(data []byte) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	var target any
	switch r.Kind {
	case HistoryReformulation:
		r.ReformulationDetails = &ReformulationDetails{}
		target = r.ReformulationDetails
	case HistoryTranslation:
		r.TranslationDetails = &TranslationDetails{}
		target = r.TranslationDetails
	case HistoryCorrection:
		r.CorrectionDetails = &CorrectionDetails{}
		target = r.CorrectionDetails
	case HistoryEmail:
		r.EmailDetails = &EmailDetails{}
		target = r.EmailDetails
	default:
		return fmt.Errorf("unknown history kind: %q", r.Kind)
	}
	return json.Unmarshal(data, target)
}
