// Package identity defines the client adapter for the external
// identity service. Implementations wrap one concrete backend and
// return classified errors (*types.AuthError), never raw transport
// errors. No retries happen at this layer.
package identity

import (
	"context"

	"github.com/plantit/plantit/internal/domain/types"
)

// Client is the narrow interface the provisioning workflow depends on.
type Client interface {
	// SignIn authenticates existing credentials. On success a session
	// is established at the identity service; callers own what
	// "logged in" means downstream.
	SignIn(ctx context.Context, email, password string) (*types.UserIdentity, error)

	// CreateAccount registers new credentials and returns the new
	// user's identity. The created account is not rolled back if a
	// later provisioning stage fails.
	CreateAccount(ctx context.Context, email, password string) (*types.UserIdentity, error)
}
