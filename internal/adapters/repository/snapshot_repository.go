package repository

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports"
	"github.com/kamal-hamza/pxo/pkg/vault"
)

const snapshotExt = ".json"

// FileSnapshotRepository keeps one JSON file per page key in the vault
type FileSnapshotRepository struct {
	vault *vault.Vault
	mu    sync.RWMutex
}

// NewFileSnapshotRepository creates a new file-based snapshot store
func NewFileSnapshotRepository(v *vault.Vault) *FileSnapshotRepository {
	return &FileSnapshotRepository{
		vault: v,
	}
}

// Ensure it implements the interface
var _ ports.SnapshotStore = (*FileSnapshotRepository)(nil)

// Put replaces the file for key. The write goes to a temp file that is
// renamed into place, so readers never see a partial snapshot.
func (r *FileSnapshotRepository) Put(ctx context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.vault.SnapshotsPath, 0755); err != nil {
		return fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.vault.SnapshotsPath, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, r.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Get reads the file for key
func (r *FileSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, key)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Delete removes the file for key
func (r *FileSnapshotRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Keys lists every page key that has a snapshot file
func (r *FileSnapshotRepository) Keys(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.vault.SnapshotsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != snapshotExt {
			continue
		}

		key, err := url.PathUnescape(strings.TrimSuffix(name, snapshotExt))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys, nil
}

// Path returns the file backing key, for watchers
func (r *FileSnapshotRepository) Path(key string) string {
	return r.path(key)
}

// Dir is the directory holding every snapshot file
func (r *FileSnapshotRepository) Dir() string {
	return r.vault.SnapshotsPath
}

func (r *FileSnapshotRepository) path(key string) string {
	return r.vault.GetSnapshotPath(url.PathEscape(key) + snapshotExt)
}
