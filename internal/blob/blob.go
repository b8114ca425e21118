// Package blob defines the upload adapter for the external blob store.
// Upload and ResolveURL are two independent suspension points, called
// in sequence by the workflow. Uploads are idempotent per owner key:
// re-uploading overwrites. No chunking or dedup at this layer.
package blob

import (
	"context"

	"github.com/plantit/plantit/internal/domain/types"
)

// Store is the narrow interface the provisioning workflow depends on.
// Errors are classified (*types.StorageError).
type Store interface {
	// Upload stores bytes keyed by the owning user and returns a ref
	// for the stored blob.
	Upload(ctx context.Context, ownerUserID string, data []byte) (types.BlobRef, error)

	// ResolveURL resolves the public URL of a previously uploaded blob.
	ResolveURL(ctx context.Context, ref types.BlobRef) (string, error)
}
