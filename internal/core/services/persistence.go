package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports"
)

// SnapshotService serializes page snapshots to and from a keyed store
type SnapshotService struct {
	store  ports.SnapshotStore
	logger *slog.Logger
}

// NewSnapshotService creates a snapshot service over store
func NewSnapshotService(store ports.SnapshotStore, logger *slog.Logger) *SnapshotService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotService{
		store:  store,
		logger: logger,
	}
}

// Save writes snap under key in a single Put, replacing any previous value
func (s *SnapshotService) Save(ctx context.Context, key string, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", key, err)
	}
	return nil
}

// Load returns the snapshot saved under key. A missing, unreadable or
// corrupt snapshot all come back as "no saved state".
func (s *SnapshotService) Load(ctx context.Context, key string) (*domain.Snapshot, bool) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			s.logger.Warn("snapshot load failed, starting empty", "key", key, "error", err)
		}
		return nil, false
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("snapshot is corrupt, starting empty", "key", key, "error", err)
		return nil, false
	}

	return &snap, true
}

// Clear deletes the snapshot for key
func (s *SnapshotService) Clear(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to clear snapshot for %s: %w", key, err)
	}
	return nil
}

// Exists reports whether a snapshot is stored for key
func (s *SnapshotService) Exists(ctx context.Context, key string) bool {
	_, err := s.store.Get(ctx, key)
	return err == nil
}

// PageSummary describes one stored page for listings and reports
type PageSummary struct {
	Key      string
	Overlays []domain.Overlay
}

// Pages lists every stored page key in sorted order
func (s *SnapshotService) Pages(ctx context.Context) ([]string, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Summaries loads every stored page. Pages that fail to load are skipped.
func (s *SnapshotService) Summaries(ctx context.Context) ([]PageSummary, error) {
	keys, err := s.Pages(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]PageSummary, 0, len(keys))
	for _, key := range keys {
		snap, ok := s.Load(ctx, key)
		if !ok {
			continue
		}
		set, _, _ := snap.Restore(domain.DefaultPlacement())
		summaries = append(summaries, PageSummary{
			Key:      key,
			Overlays: set.List(),
		})
	}
	return summaries, nil
}
