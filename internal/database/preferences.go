package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/validation"
	"github.com/google/uuid"
)

const defaultPreferencesKey = "default"

// querier is satisfied by both *DB and *Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PreferencesRepository persists the singleton preferences row
type PreferencesRepository struct {
	db   *DB
	seed models.Preferences
}

// NewPreferencesRepository creates a new preferences repository. seed is
// written the first time the row is read and ignored afterwards.
func NewPreferencesRepository(db *DB, seed models.Preferences) *PreferencesRepository {
	return &PreferencesRepository{db: db, seed: seed}
}

// GetOrCreate returns the preferences, inserting the seed first when the
// row does not exist. Concurrent callers all observe the same row.
func (r *PreferencesRepository) GetOrCreate(ctx context.Context) (*models.Preferences, error) {
	if err := r.ensure(ctx, r.db); err != nil {
		return nil, err
	}
	return r.get(ctx, r.db, false)
}

// Update applies patch to the stored preferences and returns the result.
// Only fields present in the patch change; updated_at always advances.
func (r *PreferencesRepository) Update(ctx context.Context, patch models.PreferencesPatch) (*models.Preferences, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var updated *models.Preferences
	err := r.db.withTx(ctx, func(tx *Tx) error {
		if err := r.ensure(ctx, tx); err != nil {
			return err
		}
		prefs, err := r.get(ctx, tx, true)
		if err != nil {
			return err
		}

		patch.Apply(prefs)
		prefs.UpdatedAt = nextTimestamp(prefs.UpdatedAt)

		if err := r.write(ctx, tx, prefs); err != nil {
			return err
		}
		updated = prefs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func validatePatch(patch models.PreferencesPatch) error {
	if patch.ActiveProvider != nil && !patch.ActiveProvider.Valid() {
		return validation.NewValidationError("provider", "unknown provider %q", *patch.ActiveProvider)
	}
	for provider := range patch.Providers {
		if !provider.Valid() {
			return validation.NewValidationError("provider", "unknown provider %q", provider)
		}
	}
	return nil
}

// nextTimestamp returns now, or a microsecond past prev when the clock has
// not moved beyond it. Microseconds are the finest precision Postgres keeps.
func nextTimestamp(prev time.Time) time.Time {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.UTC().Add(time.Microsecond)
	}
	return now
}

func (r *PreferencesRepository) ensure(ctx context.Context, q querier) error {
	seed := r.seed
	if seed.Providers == nil {
		seed = models.DefaultPreferences()
	}
	providers, err := json.Marshal(seed.Providers)
	if err != nil {
		return fmt.Errorf("marshal provider settings: %w", err)
	}
	rules, err := json.Marshal(seed.SyntaxRules)
	if err != nil {
		return fmt.Errorf("marshal syntax rules: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err = q.ExecContext(ctx, `
		INSERT INTO preferences (
			singleton_key, id, active_provider, provider_settings,
			system_prompt, translation_prompt, email_prompt, correction_prompt,
			syntax_rules, use_emojis, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (singleton_key) DO NOTHING
	`, defaultPreferencesKey, uuid.New(), string(seed.ActiveProvider), string(providers),
		seed.SystemPrompt, seed.TranslationPrompt, seed.EmailPrompt, seed.CorrectionPrompt,
		string(rules), seed.UseEmojis, now, now)
	if err != nil {
		return storageError("create preferences", err)
	}
	return nil
}

func (r *PreferencesRepository) get(ctx context.Context, q querier, forUpdate bool) (*models.Preferences, error) {
	query := `
		SELECT id, active_provider, provider_settings,
			system_prompt, translation_prompt, email_prompt, correction_prompt,
			syntax_rules, use_emojis, created_at, updated_at
		FROM preferences WHERE singleton_key = ?`
	if forUpdate && r.db.dialect == DialectPostgres {
		query += ` FOR UPDATE`
	}

	var (
		prefs     models.Preferences
		provider  string
		providers []byte
		rules     []byte
	)
	err := q.QueryRowContext(ctx, query, defaultPreferencesKey).Scan(
		&prefs.ID, &provider, &providers,
		&prefs.SystemPrompt, &prefs.TranslationPrompt, &prefs.EmailPrompt, &prefs.CorrectionPrompt,
		&rules, &prefs.UseEmojis, &prefs.CreatedAt, &prefs.UpdatedAt,
	)
	if err != nil {
		return nil, storageError("get preferences", err)
	}

	prefs.ActiveProvider = models.Provider(provider)
	if err := json.Unmarshal(providers, &prefs.Providers); err != nil {
		return nil, storageError("decode provider settings", err)
	}
	prefs.SyntaxRules = models.DefaultSyntaxRules()
	if err := json.Unmarshal(rules, &prefs.SyntaxRules); err != nil {
		return nil, storageError("decode syntax rules", err)
	}
	prefs.CreatedAt = prefs.CreatedAt.UTC()
	prefs.UpdatedAt = prefs.UpdatedAt.UTC()
	return &prefs, nil
}

func (r *PreferencesRepository) write(ctx context.Context, q querier, prefs *models.Preferences) error {
	providers, err := json.Marshal(prefs.Providers)
	if err != nil {
		return fmt.Errorf("marshal provider settings: %w", err)
	}
	rules, err := json.Marshal(prefs.SyntaxRules)
	if err != nil {
		return fmt.Errorf("marshal syntax rules: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		UPDATE preferences SET
			active_provider = ?,
			provider_settings = ?,
			system_prompt = ?,
			translation_prompt = ?,
			email_prompt = ?,
			correction_prompt = ?,
			syntax_rules = ?,
			use_emojis = ?,
			updated_at = ?
		WHERE singleton_key = ?
	`, string(prefs.ActiveProvider), string(providers),
		prefs.SystemPrompt, prefs.TranslationPrompt, prefs.EmailPrompt, prefs.CorrectionPrompt,
		string(rules), prefs.UseEmojis, prefs.UpdatedAt, defaultPreferencesKey)
	if err != nil {
		return storageError("update preferences", err)
	}
	return nil
}
