// Package assistant orchestrates the writing operations: it loads the
// stored preferences, builds the prompt, calls the active provider and
// records the outcome in the history.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/plume/internal/database"
	"github.com/benvon/plume/internal/logger"
	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/ai"
	"github.com/benvon/plume/internal/services/prompt"
	"github.com/benvon/plume/internal/validation"
	"go.uber.org/zap"
)

// DefaultHistoryLimit is used when no positive limit is configured
const DefaultHistoryLimit = 10

// Options tunes the service
type Options struct {
	HistoryEnabled bool
	HistoryLimit   int
}

// Service runs the writing operations against the active provider
type Service struct {
	prefs          database.PreferencesStore
	history        database.HistoryStore
	registry       *ai.Registry
	catalog        *ai.Catalog
	logger         *zap.Logger
	historyEnabled bool
	historyLimit   int
}

// NewService wires a Service
func NewService(
	prefs database.PreferencesStore,
	history database.HistoryStore,
	registry *ai.Registry,
	catalog *ai.Catalog,
	log *zap.Logger,
	opts Options,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	limit := opts.HistoryLimit
	if limit < 0 {
		limit = DefaultHistoryLimit
	}
	return &Service{
		prefs:          prefs,
		history:        history,
		registry:       registry,
		catalog:        catalog,
		logger:         log,
		historyEnabled: opts.HistoryEnabled,
		historyLimit:   limit,
	}
}

// Reformulate rewrites text with the requested tone, format and length
func (s *Service) Reformulate(ctx context.Context, req ReformulateRequest) (*Result, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	prefs, err := s.prefs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	useEmojis := prefs.UseEmojis
	if req.UseEmojis != nil {
		useEmojis = *req.UseEmojis
	}
	in := prompt.ReformulationInput{
		Text:      req.Text,
		Context:   req.Context,
		Tone:      orDefault(req.Tone, DefaultTone),
		Format:    orDefault(req.Format, DefaultFormat),
		Length:    orDefault(req.Length, DefaultLength),
		UseEmojis: useEmojis,
	}

	text, err := s.generate(ctx, prefs, prompt.Reformulation(prefs, in))
	if err != nil {
		return nil, fmt.Errorf("reformulate: %w", err)
	}

	s.record(ctx, &models.HistoryRecord{
		Kind:          models.HistoryReformulation,
		OriginalText:  req.Text,
		GeneratedText: text,
		ReformulationDetails: &models.ReformulationDetails{
			Context: req.Context,
			Tone:    in.Tone,
			Format:  in.Format,
			Length:  in.Length,
		},
	})
	return &Result{Text: text}, nil
}

// Translate translates text into the requested language
func (s *Service) Translate(ctx context.Context, req TranslateRequest) (*Result, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	prefs, err := s.prefs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	p := prompt.Translation(prefs, prompt.TranslationInput{Text: req.Text, TargetLanguage: req.Language})
	text, err := s.generate(ctx, prefs, p)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}

	s.record(ctx, &models.HistoryRecord{
		Kind:          models.HistoryTranslation,
		OriginalText:  req.Text,
		GeneratedText: text,
		TranslationDetails: &models.TranslationDetails{
			TargetLanguage: req.Language,
			SourceLanguage: req.SourceLanguage,
		},
	})
	return &Result{Text: text}, nil
}

// Correct fixes the text according to the selected categories. When
// synonyms are requested the answer is split into text and synonyms.
func (s *Service) Correct(ctx context.Context, req CorrectRequest) (*CorrectionResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	prefs, err := s.prefs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, prefs, prompt.Correction(prefs, prompt.CorrectionInput{Text: req.Text, Options: req.Options}))
	if err != nil {
		return nil, fmt.Errorf("correct: %w", err)
	}

	result := &CorrectionResult{Text: raw}
	if req.Options.Synonyms {
		result.Text, result.Synonyms = prompt.ParseCorrection(raw)
	}

	s.record(ctx, &models.HistoryRecord{
		Kind:          models.HistoryCorrection,
		OriginalText:  req.Text,
		GeneratedText: result.Text,
		CorrectionDetails: &models.CorrectionDetails{
			Options:  req.Options,
			Synonyms: result.Synonyms,
		},
	})
	return result, nil
}

// GenerateEmail drafts an email and extracts its subject line
func (s *Service) GenerateEmail(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	prefs, err := s.prefs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	p := prompt.Email(prefs, prompt.EmailInput{Type: req.Type, Content: req.Content, Sender: req.Sender, Tone: req.Tone})
	text, err := s.generate(ctx, prefs, p)
	if err != nil {
		return nil, fmt.Errorf("generate email: %w", err)
	}

	subject := prompt.ExtractSubject(text)
	s.record(ctx, &models.HistoryRecord{
		Kind:          models.HistoryEmail,
		OriginalText:  req.Content,
		GeneratedText: text,
		EmailDetails: &models.EmailDetails{
			EmailType: req.Type,
			Sender:    req.Sender,
			Subject:   subject,
			Content:   req.Content,
		},
	})
	return &EmailResult{Text: text, Subject: subject}, nil
}

// generate dispatches p to the adapter of the active provider
func (s *Service) generate(ctx context.Context, prefs *models.Preferences, p prompt.Prompt) (string, error) {
	adapter, err := s.registry.Get(prefs.ActiveProvider)
	if err != nil {
		return "", err
	}
	return adapter.Generate(ctx, p.System, p.User, prefs.ActiveSettings())
}

// record appends to the history. A failure here never fails the request.
func (s *Service) record(ctx context.Context, record *models.HistoryRecord) {
	if !s.historyEnabled {
		return
	}
	if err := s.history.Append(ctx, record); err != nil {
		logger.WithContext(ctx, s.logger).Error("history_append_failed",
			zap.String("kind", string(record.Kind)),
			zap.String("error", logger.SanitizeError(err)),
		)
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
