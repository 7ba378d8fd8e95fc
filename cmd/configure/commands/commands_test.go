package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/assistant"
	"gopkg.in/yaml.v3"
)

// run executes plume-configure with args against a temp database
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "configure_test.db"))
	t.Setenv("MODEL_CATALOG_MODE", "static")
	t.Setenv("REDIS_URL", "")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestSettingsSetAndShow(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "settings", "set", "--provider", "openai", "--model", "gpt-4o", "--api-key", "sk-test-abcdefghijkl")
	if err != nil {
		t.Fatalf("settings set: %v (%s)", err, out)
	}
	if !strings.Contains(out, "Active provider: openai") {
		t.Errorf("Unexpected output %q", out)
	}

	out, err = run(t, "settings", "show")
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	if strings.Contains(out, "abcdefghijkl") {
		t.Errorf("API key leaked: %s", out)
	}
	if !strings.Contains(out, "Model: gpt-4o") || !strings.Contains(out, "Active provider: openai") {
		t.Errorf("Unexpected settings output %q", out)
	}
}

func TestSettingsSet_Errors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no flags", args: []string{"settings", "set"}},
		{name: "unknown provider", args: []string{"settings", "set", "--provider", "mistral"}},
		{name: "model without provider", args: []string{"settings", "set", "--model", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestHistoryAndModels(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	for _, kind := range models.AllHistoryKinds() {
		if !strings.Contains(out, string(kind)+" (0)") {
			t.Errorf("Expected empty %s section in %q", kind, out)
		}
	}

	if _, err := run(t, "history", "list", "--kind", "poem"); err == nil {
		t.Error("Expected error for unknown kind")
	}
	if out, err := run(t, "history", "count"); err != nil || !strings.Contains(out, "email: 0") {
		t.Errorf("history count: %v %q", err, out)
	}
	if _, err := run(t, "history", "reset"); err == nil {
		t.Error("Expected reset to require --yes")
	}
	if out, err := run(t, "history", "reset", "--yes"); err != nil || !strings.Contains(out, "History cleared.") {
		t.Errorf("history reset --yes: %v %q", err, out)
	}

	if _, err := run(t, "models", "openai"); err == nil {
		t.Error("Expected missing credential error for openai")
	}
}

func TestEncodeBackup(t *testing.T) {
	t.Parallel()

	prefs := models.DefaultPreferences()
	prefs.Providers[models.ProviderGroq] = models.ProviderSettings{Model: "llama", APIKey: "gsk_secret_value_123"}
	backup := Backup{
		ExportedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Settings:   withoutCredentials(assistant.NewSettingsView(&prefs)),
		History: map[models.HistoryKind][]*models.HistoryRecord{
			models.HistoryTranslation: {{
				Kind:               models.HistoryTranslation,
				OriginalText:       "Bonjour",
				GeneratedText:      "Hello",
				TranslationDetails: &models.TranslationDetails{TargetLanguage: "anglais"},
			}},
		},
	}

	tests := []struct {
		format string
		decode func([]byte, any) error
	}{
		{format: "json", decode: json.Unmarshal},
		{format: "yaml", decode: yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := encodeBackup(&buf, backup, tt.format); err != nil {
				t.Fatalf("encodeBackup() error: %v", err)
			}
			if strings.Contains(buf.String(), "secret") || strings.Contains(buf.String(), "REDACTED") {
				t.Errorf("credentials leaked: %s", buf.String())
			}

			var doc map[string]any
			if err := tt.decode(buf.Bytes(), &doc); err != nil {
				t.Fatalf("decode: %v", err)
			}
			history, _ := doc["history"].(map[string]any)
			translations, _ := history["translation"].([]any)
			if len(translations) != 1 {
				t.Fatalf("Expected 1 translation, got %v", history)
			}
			record, _ := translations[0].(map[string]any)
			if record["original_text"] != "Bonjour" || record["target_language"] != "anglais" {
				t.Errorf("Unexpected record %v", record)
			}
		})
	}
}

// closeFailer is a WriteCloser whose Close fails
type closeFailer struct {
	bytes.Buffer
	closed bool
}

func (c *closeFailer) Close() error {
	c.closed = true
	return errors.New("disk full")
}

func TestWriteBackup_ReportsCloseError(t *testing.T) {
	t.Parallel()

	prefs := models.DefaultPreferences()
	backup := Backup{Settings: assistant.NewSettingsView(&prefs)}

	w := &closeFailer{}
	err := writeBackup(w, backup, "json")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Expected close error, got %v", err)
	}
	if !w.closed {
		t.Error("Expected the writer to be closed")
	}
	if w.Len() == 0 {
		t.Error("Expected the backup to be written before close")
	}
}

func TestExportToFile(t *testing.T) {
	setupEnv(t)

	path := filepath.Join(t.TempDir(), "backup.yaml")
	if out, err := run(t, "export", "--format", "yaml", "-o", path); err != nil {
		t.Fatalf("export: %v (%s)", err, out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if _, ok := doc["settings"]; !ok {
		t.Errorf("Expected settings in export, got %v", doc)
	}

	if _, err := run(t, "export", "-o", filepath.Join(t.TempDir(), "missing", "backup.json")); err == nil {
		t.Error("Expected an error for an unwritable path")
	}
}
