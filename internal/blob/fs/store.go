// Package fs implements the blob adapter on the local filesystem, for
// development and tests. Blobs land under root/<ownerUserID>; resolved
// URLs are baseURL/<ownerUserID>.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/util/atomicwrite"
)

// Store is a filesystem-backed blob.Store.
type Store struct {
	root    string
	baseURL string
}

// New creates a store rooted at root. The directory is created if
// missing.
func New(root, baseURL string) (*Store, error) {
	if root == "" {
		root = filepath.Join("data", "blobs")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("blob fs: create root %s: %w", root, err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload implements blob.Store. Re-uploading for the same owner
// overwrites the previous blob.
func (s *Store) Upload(ctx context.Context, ownerUserID string, data []byte) (types.BlobRef, error) {
	if ownerUserID == "" {
		return "", types.NewStorageError(types.StorageUnknown, "empty owner id", nil)
	}
	path := s.path(ownerUserID)
	if err := atomicwrite.AtomicWriteFile(path, data, 0644); err != nil {
		return "", types.NewStorageError(types.StorageUnknown, "write blob", err)
	}
	return types.BlobRef(ownerUserID), nil
}

// ResolveURL implements blob.Store.
func (s *Store) ResolveURL(ctx context.Context, ref types.BlobRef) (string, error) {
	if ref == "" {
		return "", types.NewStorageError(types.StorageNotFound, "empty blob ref", nil)
	}
	if _, err := os.Stat(s.path(string(ref))); err != nil {
		if os.IsNotExist(err) {
			return "", types.NewStorageError(types.StorageNotFound, "blob not found", err)
		}
		return "", types.NewStorageError(types.StorageUnknown, "stat blob", err)
	}
	return s.baseURL + "/" + string(ref), nil
}

func (s *Store) path(owner string) string {
	// owner IDs are uuids or identity-service uids; keep them from
	// escaping the root anyway
	return filepath.Join(s.root, filepath.Base(owner))
}
