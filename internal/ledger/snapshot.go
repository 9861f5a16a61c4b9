package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Versioned slot keys. Bumping the suffix orphans older, incompatible shapes.
const (
	KeyTransactions = "vaulty_transactions_v14"
	KeyBudgets      = "vaulty_budgets_v14"
	KeyProfile      = "vaulty_profile_v14"
)

// ErrSnapshotNotFound is returned by SnapshotStore.Load for an empty slot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore persists whole JSON snapshots under a key.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// FileStore keeps each slot as <dir>/<key>.json.
type FileStore struct {
	Dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewFileStore: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

// Load implements SnapshotStore.
func (f *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FileStore.Load: %w", err)
	}
	return data, nil
}

// Save implements SnapshotStore. The file is replaced atomically.
func (f *FileStore) Save(ctx context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(f.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("FileStore.Save: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("FileStore.Save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("FileStore.Save: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("FileStore.Save: rename: %w", err)
	}
	return nil
}

var _ SnapshotStore = (*FileStore)(nil)

// Keys lists every slot in load order.
var Keys = []string{KeyTransactions, KeyBudgets, KeyProfile}

// CopySlots copies every present slot from src to dst and returns the keys
// copied. Empty slots are skipped. Data is copied byte for byte.
func CopySlots(ctx context.Context, src, dst SnapshotStore) ([]string, error) {
	var copied []string
	for _, key := range Keys {
		data, err := src.Load(ctx, key)
		if errors.Is(err, ErrSnapshotNotFound) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("CopySlots: load %s: %w", key, err)
		}
		if err := dst.Save(ctx, key, data); err != nil {
			return copied, fmt.Errorf("CopySlots: save %s: %w", key, err)
		}
		copied = append(copied, key)
	}
	return copied, nil
}
