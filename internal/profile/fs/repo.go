// Package fs implements the profile repository as one YAML file per
// user under a root directory, for development and tests. Writes are
// atomic (write temp + rename).
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/profile"
	"github.com/plantit/plantit/internal/util/atomicwrite"
)

// Repo is a filesystem-backed profile.Repository.
type Repo struct {
	root string
	mu   sync.RWMutex
}

// New creates a repo rooted at root, creating the directory if needed.
func New(root string) (*Repo, error) {
	if root == "" {
		root = filepath.Join("data", "profiles")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("profile fs: create root %s: %w", root, err)
	}
	return &Repo{root: root}, nil
}

// Upsert implements profile.Repository.
func (r *Repo) Upsert(ctx context.Context, rec types.ProfileRecord) error {
	if rec.UserID == "" {
		return types.NewPersistError(types.PersistUnknown, "empty user id", nil)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return types.NewPersistError(types.PersistUnknown, "encode profile", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := atomicwrite.AtomicWriteFile(r.path(rec.UserID), data, 0644); err != nil {
		if os.IsPermission(err) {
			return types.NewPersistError(types.PersistPermissionDenied, "write profile", err)
		}
		return types.NewPersistError(types.PersistUnknown, "write profile", err)
	}
	return nil
}

// Get implements profile.Repository.
func (r *Repo) Get(ctx context.Context, userID string) (*types.ProfileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, profile.ErrNotFound
		}
		return nil, types.NewPersistError(types.PersistUnknown, "read profile", err)
	}

	var rec types.ProfileRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, types.NewPersistError(types.PersistUnknown, "decode profile", err)
	}
	return &rec, nil
}

func (r *Repo) path(userID string) string {
	return filepath.Join(r.root, filepath.Base(userID)+".yaml")
}
