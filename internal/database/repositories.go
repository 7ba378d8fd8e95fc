package database

import (
	"context"

	"github.com/benvon/plume/internal/models"
)

// PreferencesStore defines the preferences operations used by services.
// This interface lets tests substitute in-memory implementations.
type PreferencesStore interface {
	GetOrCreate(ctx context.Context) (*models.Preferences, error)
	Update(ctx context.Context, patch models.PreferencesPatch) (*models.Preferences, error)
}

// HistoryStore defines the history operations used by services
type HistoryStore interface {
	Append(ctx context.Context, record *models.HistoryRecord) error
	ListRecent(ctx context.Context, kind models.HistoryKind, limit int) ([]*models.HistoryRecord, error)
	Count(ctx context.Context, kind models.HistoryKind) (int, error)
	ClearAll(ctx context.Context) error
}

// Ensure concrete types implement the interfaces
var (
	_ PreferencesStore = (*PreferencesRepository)(nil)
	_ HistoryStore     = (*HistoryRepository)(nil)
)
