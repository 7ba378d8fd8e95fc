package assistant

import (
	"context"

	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/validation"
)

// HistoryLimit is the number of records returned per kind by default
func (s *Service) HistoryLimit() int {
	return s.historyLimit
}

// History returns the most recent records of every kind, newest first.
// A negative limit selects the configured default; zero means all.
func (s *Service) History(ctx context.Context, limit int) (*HistorySummary, error) {
	limit = s.effectiveLimit(limit)

	summary := &HistorySummary{}
	targets := []struct {
		kind models.HistoryKind
		dst  *[]*models.HistoryRecord
	}{
		{models.HistoryReformulation, &summary.Reformulations},
		{models.HistoryTranslation, &summary.Translations},
		{models.HistoryCorrection, &summary.Corrections},
		{models.HistoryEmail, &summary.Emails},
	}
	for _, target := range targets {
		records, err := s.history.ListRecent(ctx, target.kind, limit)
		if err != nil {
			return nil, err
		}
		*target.dst = records
	}
	return summary, nil
}

// HistoryByKind returns the most recent records of one kind
func (s *Service) HistoryByKind(ctx context.Context, kind string, limit int) ([]*models.HistoryRecord, error) {
	req := HistoryRequest{Kind: kind, Limit: limit}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.history.ListRecent(ctx, models.HistoryKind(req.Kind), s.effectiveLimit(req.Limit))
}

// HistoryCounts returns the number of stored records per kind
func (s *Service) HistoryCounts(ctx context.Context) (map[models.HistoryKind]int, error) {
	counts := make(map[models.HistoryKind]int, len(models.AllHistoryKinds()))
	for _, kind := range models.AllHistoryKinds() {
		n, err := s.history.Count(ctx, kind)
		if err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, nil
}

// ResetHistory deletes every history record of every kind
func (s *Service) ResetHistory(ctx context.Context) error {
	return s.history.ClearAll(ctx)
}

func (s *Service) effectiveLimit(limit int) int {
	if limit < 0 {
		return s.historyLimit
	}
	return limit
}
