package assistant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benvon/plume/internal/database"
	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/ai"
	"github.com/benvon/plume/internal/validation"
	"github.com/google/uuid"
)

// memoryPreferences is an in-memory PreferencesStore
type memoryPreferences struct {
	mu    sync.Mutex
	prefs models.Preferences
	err   error
}

func newMemoryPreferences(active models.Provider) *memoryPreferences {
	prefs := models.DefaultPreferences()
	prefs.ID = uuid.New()
	prefs.ActiveProvider = active
	return &memoryPreferences{prefs: prefs}
}

func (m *memoryPreferences) GetOrCreate(context.Context) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p := m.prefs
	return &p, nil
}

func (m *memoryPreferences) Update(_ context.Context, patch models.PreferencesPatch) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	patch.Apply(&m.prefs)
	m.prefs.UpdatedAt = time.Now()
	p := m.prefs
	return &p, nil
}

// memoryHistory is an in-memory HistoryStore
type memoryHistory struct {
	mu        sync.Mutex
	records   []*models.HistoryRecord
	appendErr error
}

func (m *memoryHistory) Append(_ context.Context, record *models.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	m.records = append(m.records, record)
	return nil
}

func (m *memoryHistory) ListRecent(_ context.Context, kind models.HistoryKind, limit int) ([]*models.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.HistoryRecord{}
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Kind != kind {
			continue
		}
		out = append(out, m.records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryHistory) Count(_ context.Context, kind models.HistoryKind) (int, error) {
	records, _ := m.ListRecent(context.Background(), kind, 0)
	return len(records), nil
}

func (m *memoryHistory) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

var (
	_ database.PreferencesStore = (*memoryPreferences)(nil)
	_ database.HistoryStore     = (*memoryHistory)(nil)
)

// fakeAdapter records the prompts it receives
type fakeAdapter struct {
	provider models.Provider
	text     string
	err      error
	status   models.ProviderStatus

	calls      atomic.Int32
	mu         sync.Mutex
	lastSystem string
	lastUser   string
	lastSet    models.ProviderSettings
}

func (f *fakeAdapter) Provider() models.Provider { return f.provider }

func (f *fakeAdapter) Generate(_ context.Context, system, user string, settings models.ProviderSettings) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastSystem, f.lastUser, f.lastSet = system, user, settings
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeAdapter) ListModels(context.Context, models.ProviderSettings) ([]models.ModelInfo, error) {
	return []models.ModelInfo{{ID: "local-model", Name: "local-model"}}, f.err
}

func (f *fakeAdapter) CheckStatus(_ context.Context, settings models.ProviderSettings) models.ProviderStatus {
	f.mu.Lock()
	f.lastSet = settings
	f.mu.Unlock()
	return f.status
}

type fixture struct {
	service *Service
	prefs   *memoryPreferences
	history *memoryHistory
	adapter *fakeAdapter
}

func newFixture(t *testing.T, active models.Provider, text string) *fixture {
	t.Helper()
	adapter := &fakeAdapter{provider: active, text: text}
	registry := ai.NewRegistry()
	registry.Register(adapter)
	prefs := newMemoryPreferences(active)
	history := &memoryHistory{}
	catalog := ai.NewCatalog(registry, ai.CatalogStatic, nil, 0, nil)
	svc := NewService(prefs, history, registry, catalog, nil, Options{HistoryEnabled: true, HistoryLimit: 10})
	return &fixture{service: svc, prefs: prefs, history: history, adapter: adapter}
}

func TestService_Reformulate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "  Texte reformulé \n")
	res, err := f.service.Reformulate(context.Background(), ReformulateRequest{
		Text: "salut", Tone: "Professionnel", Format: "Email",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "  Texte reformulé \n" {
		t.Errorf("text was modified: %q", res.Text)
	}
	if f.adapter.lastSet.Endpoint != models.DefaultOllamaURL {
		t.Errorf("adapter did not receive the active settings: %+v", f.adapter.lastSet)
	}

	records, _ := f.history.ListRecent(context.Background(), models.HistoryReformulation, 0)
	if len(records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(records))
	}
	rec := records[0]
	if rec.OriginalText != "salut" || rec.ReformulationDetails == nil || rec.Length != DefaultLength || rec.Format != "Email" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestService_ValidationNeverCallsAdapter(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "x")
	ctx := context.Background()

	calls := []func() error{
		func() error { _, err := f.service.Reformulate(ctx, ReformulateRequest{}); return err },
		func() error { _, err := f.service.Reformulate(ctx, ReformulateRequest{Text: "  \n "}); return err },
		func() error { _, err := f.service.Translate(ctx, TranslateRequest{Text: "hello"}); return err },
		func() error { _, err := f.service.Correct(ctx, CorrectRequest{}); return err },
		func() error { _, err := f.service.GenerateEmail(ctx, EmailRequest{Type: "relance"}); return err },
	}
	for i, call := range calls {
		if err := call(); !validation.IsValidationError(err) {
			t.Errorf("call %d: expected a validation error, got %v", i, err)
		}
	}
	if f.adapter.calls.Load() != 0 {
		t.Errorf("expected no adapter calls, got %d", f.adapter.calls.Load())
	}
}

func TestService_TranslateUsesRawText(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderGroq, "Hello world")
	res, err := f.service.Translate(context.Background(), TranslateRequest{Text: "Bonjour le monde", Language: "Anglais"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Hello world" {
		t.Errorf("unexpected text %q", res.Text)
	}
	if f.adapter.lastUser != "Bonjour le monde" {
		t.Errorf("expected raw text as user prompt, got %q", f.adapter.lastUser)
	}
}

func TestService_CorrectWithSynonyms(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "===TEXTE CORRIGÉ===\nJe mange des pommes.\n===SYNONYMES===\nmanger: déguster, savourer\n")
	res, err := f.service.Correct(context.Background(), CorrectRequest{
		Text:    "je mange des pomme",
		Options: models.CorrectionOptions{Spelling: true, Synonyms: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Je mange des pommes." {
		t.Errorf("unexpected corrected text %q", res.Text)
	}
	if got := res.Synonyms["manger"]; len(got) != 2 {
		t.Errorf("unexpected synonyms %v", res.Synonyms)
	}
}

func TestService_CorrectWithoutSynonymsKeepsOutput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "Je mange des pommes.\n")
	res, err := f.service.Correct(context.Background(), CorrectRequest{Text: "je mange des pomme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Je mange des pommes.\n" || res.Synonyms != nil {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestService_GenerateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		output      string
		wantSubject string
	}{
		{name: "with subject", output: "Objet: Réunion demain\n\nBonjour,\n...", wantSubject: "Réunion demain"},
		{name: "without subject", output: "Bonjour,\nà demain.", wantSubject: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, models.ProviderOllama, tt.output)
			res, err := f.service.GenerateEmail(context.Background(), EmailRequest{Type: "réunion", Content: "point hebdo", Sender: "Léa"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Subject != tt.wantSubject {
				t.Errorf("expected subject %q, got %q", tt.wantSubject, res.Subject)
			}
			if res.Text != tt.output {
				t.Errorf("text was modified: %q", res.Text)
			}
			records, _ := f.history.ListRecent(context.Background(), models.HistoryEmail, 0)
			if len(records) != 1 || records[0].Subject != tt.wantSubject || records[0].Sender != "Léa" {
				t.Errorf("unexpected history %+v", records)
			}
		})
	}
}

func TestService_ProviderErrorsPropagate(t *testing.T) {
	t.Parallel()

	for _, want := range []error{ai.ErrProviderTimeout, ai.ErrProviderUnavailable, ai.ErrMissingCredential} {
		f := newFixture(t, models.ProviderOllama, "")
		f.adapter.err = want

		_, err := f.service.Reformulate(context.Background(), ReformulateRequest{Text: "x"})
		if !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
		if n, _ := f.history.Count(context.Background(), models.HistoryReformulation); n != 0 {
			t.Errorf("failed generations must not be recorded, got %d records", n)
		}
	}
}

func TestService_HistoryFailureStillReturnsText(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "ok")
	f.history.appendErr = database.ErrStorage

	res, err := f.service.Translate(context.Background(), TranslateRequest{Text: "a", Language: "Anglais"})
	if err != nil {
		t.Fatalf("expected success despite history failure, got %v", err)
	}
	if res.Text != "ok" {
		t.Errorf("unexpected text %q", res.Text)
	}
}

func TestService_HistoryDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "ok")
	f.service.historyEnabled = false

	if _, err := f.service.Translate(context.Background(), TranslateRequest{Text: "a", Language: "Anglais"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := f.history.Count(context.Background(), models.HistoryTranslation); n != 0 {
		t.Errorf("expected no history, got %d", n)
	}
}

func TestService_HistoryAndReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "ok")
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		if _, err := f.service.Reformulate(ctx, ReformulateRequest{Text: "t"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.service.GenerateEmail(ctx, EmailRequest{Type: "a", Content: "b"}); err != nil {
		t.Fatal(err)
	}

	summary, err := f.service.History(ctx, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Reformulations) != 10 || len(summary.Emails) != 1 || len(summary.Translations) != 0 {
		t.Errorf("unexpected summary sizes: %d/%d/%d",
			len(summary.Reformulations), len(summary.Emails), len(summary.Translations))
	}

	all, err := f.service.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Reformulations) != 12 {
		t.Errorf("expected all 12 reformulations, got %d", len(all.Reformulations))
	}

	byKind, err := f.service.HistoryByKind(ctx, "email", -1)
	if err != nil || len(byKind) != 1 {
		t.Errorf("unexpected HistoryByKind result: %v %v", byKind, err)
	}
	var vErr *validation.ValidationError
	if _, err := f.service.HistoryByKind(ctx, "poems", -1); !errors.As(err, &vErr) || vErr.Field != "kind" {
		t.Errorf("expected validation error on kind, got %v", err)
	}

	counts, err := f.service.HistoryCounts(ctx)
	if err != nil || counts[models.HistoryReformulation] != 12 {
		t.Errorf("unexpected counts %v %v", counts, err)
	}

	if err := f.service.ResetHistory(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, _ = f.service.History(ctx, 0)
	if len(summary.Reformulations) != 0 || len(summary.Emails) != 0 {
		t.Error("expected empty history after reset")
	}
}

func TestService_StorageErrorOnLoad(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.ProviderOllama, "ok")
	f.prefs.err = database.ErrStorage

	if _, err := f.service.Reformulate(context.Background(), ReformulateRequest{Text: "x"}); !errors.Is(err, database.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
	if f.adapter.calls.Load() != 0 {
		t.Error("adapter must not be called when preferences cannot be loaded")
	}
}
