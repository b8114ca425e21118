// Package profile defines the adapter for the external document store
// holding profile records. The write is a single keyed upsert: a
// record exists per user or it does not, there is no partial-field
// update.
package profile

import (
	"context"
	"errors"

	"github.com/plantit/plantit/internal/domain/types"
)

// ErrNotFound is returned by Get when no record exists for the user.
var ErrNotFound = errors.New("profile: not found")

// Repository is the narrow interface the provisioning workflow depends
// on. Write errors are classified (*types.PersistError).
type Repository interface {
	// Upsert writes the record keyed by its UserID, creating or
	// overwriting (last-write-wins at the store).
	Upsert(ctx context.Context, rec types.ProfileRecord) error

	// Get reads the record for userID. Returns ErrNotFound when
	// absent. Used by the read-back surface, not by the workflow.
	Get(ctx context.Context, userID string) (*types.ProfileRecord, error)
}
