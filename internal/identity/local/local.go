// Package local implements an in-process identity provider for
// development and tests. Accounts live in memory; passwords are stored
// as argon2id PHC strings.
package local

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/security/password"
)

type account struct {
	id  string
	phc string
}

// Provider is an in-memory identity.Client.
type Provider struct {
	mu       sync.RWMutex
	byEmail  map[string]account
	hashWith password.Params
}

// New creates an empty local provider.
func New() *Provider {
	return &Provider{
		byEmail:  make(map[string]account),
		hashWith: password.Default,
	}
}

// SignIn implements identity.Client.
func (p *Provider) SignIn(ctx context.Context, email, pass string) (*types.UserIdentity, error) {
	email = normalize(email)

	p.mu.RLock()
	acc, ok := p.byEmail[email]
	p.mu.RUnlock()

	if !ok || !password.Verify(pass, acc.phc) {
		return nil, types.NewAuthError(types.AuthInvalidCredentials, "invalid email or password", nil)
	}
	return &types.UserIdentity{UserID: acc.id, Email: email}, nil
}

// CreateAccount implements identity.Client.
func (p *Provider) CreateAccount(ctx context.Context, email, pass string) (*types.UserIdentity, error) {
	email = normalize(email)

	phc, err := password.Hash(p.hashWith, pass)
	if err != nil {
		return nil, types.NewAuthError(types.AuthUnknown, "hash password", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[email]; exists {
		return nil, types.NewAuthError(types.AuthAccountAlreadyExists, "email already registered", nil)
	}

	acc := account{id: uuid.NewString(), phc: phc}
	p.byEmail[email] = acc

	return &types.UserIdentity{UserID: acc.id, Email: email}, nil
}

func normalize(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
