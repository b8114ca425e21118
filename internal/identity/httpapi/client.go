// Package httpapi implements the identity adapter against a remote
// REST identity service with password sign-in and sign-up endpoints.
// Service error codes are mapped to the closed AuthError set; the
// returned ID token is parsed to extract the subject when the service
// omits a plain user ID.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/observability/logger"
)

const (
	signInPath = "/v1/accounts:signInWithPassword"
	signUpPath = "/v1/accounts:signUp"
)

// Client talks to the identity service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout sets the per-call HTTP timeout. Timeouts surface as
// AuthUnreachable.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates an identity client for the service at baseURL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentialsPayload struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn implements identity.Client.
func (c *Client) SignIn(ctx context.Context, email, password string) (*types.UserIdentity, error) {
	return c.call(ctx, signInPath, email, password)
}

// CreateAccount implements identity.Client.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (*types.UserIdentity, error) {
	return c.call(ctx, signUpPath, email, password)
}

func (c *Client) call(ctx context.Context, path, email, password string) (*types.UserIdentity, error) {
	log := logger.From(ctx).With(
		logger.Layer("adapter"),
		logger.Component("identity.httpapi"),
	)

	body, err := json.Marshal(credentialsPayload{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, types.NewAuthError(types.AuthUnknown, "encode request", err)
	}

	url := c.baseURL + path
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewAuthError(types.AuthUnknown, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("identity call failed", logger.Err(err))
		return nil, types.NewAuthError(types.AuthUnreachable, "identity service unreachable", err)
	}
	defer resp.Body.Close()

	var ar accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, types.NewAuthError(types.AuthUnknown, "decode response", err)
	}

	if resp.StatusCode >= 500 {
		return nil, types.NewAuthError(types.AuthUnreachable, fmt.Sprintf("identity service returned %d", resp.StatusCode), nil)
	}
	if ar.Error != nil {
		return nil, classify(ar.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAuthError(types.AuthUnknown, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	uid := ar.LocalID
	if uid == "" {
		// Some deployments only return the ID token; fall back to its
		// subject claim. Signature verification is the resource
		// servers' concern, the channel here is TLS.
		uid, err = subjectFromToken(ar.IDToken)
		if err != nil {
			return nil, types.NewAuthError(types.AuthUnknown, "no user id in response", err)
		}
	}

	return &types.UserIdentity{UserID: uid, Email: email}, nil
}

// classify maps identity-service error codes to AuthError kinds.
func classify(code string) *types.AuthError {
	switch {
	case strings.HasPrefix(code, "EMAIL_EXISTS"):
		return types.NewAuthError(types.AuthAccountAlreadyExists, "email already registered", nil)
	case strings.HasPrefix(code, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(code, "INVALID_PASSWORD"),
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(code, "USER_DISABLED"):
		return types.NewAuthError(types.AuthInvalidCredentials, "invalid email or password", nil)
	default:
		return types.NewAuthError(types.AuthUnknown, code, nil)
	}
}

// subjectFromToken extracts the sub claim from an ID token.
func subjectFromToken(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty id token")
	}
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("id token has no subject")
	}
	return claims.Subject, nil
}
