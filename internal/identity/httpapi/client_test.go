package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plantit/plantit/internal/domain/types"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-key")
}

func TestSignInSuccess(t *testing.T) {
	var gotPath, gotKey string
	cl := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		var in credentialsPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "a@x.com", in.Email)
		require.True(t, in.ReturnSecureToken)

		_ = json.NewEncoder(w).Encode(accountResponse{LocalID: "u1", Email: in.Email})
	})

	id, err := cl.SignIn(context.Background(), "a@x.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "u1", id.UserID)
	require.Equal(t, "a@x.com", id.Email)
	require.Equal(t, signInPath, gotPath)
	require.Equal(t, "test-key", gotKey)
}

func TestCreateAccountEmailExists(t *testing.T) {
	cl := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"EMAIL_EXISTS"}}`)
	})

	_, err := cl.CreateAccount(context.Background(), "a@x.com", "secret")
	authErr, ok := types.AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, types.AuthAccountAlreadyExists, authErr.Kind)
}

func TestSignInInvalidCredentials(t *testing.T) {
	for _, code := range []string{"EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED"} {
		t.Run(code, func(t *testing.T) {
			cl := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, `{"error":{"code":400,"message":%q}}`, code)
			})

			_, err := cl.SignIn(context.Background(), "a@x.com", "bad")
			authErr, ok := types.AsAuthError(err)
			require.True(t, ok)
			require.Equal(t, types.AuthInvalidCredentials, authErr.Kind)
		})
	}
}

func TestSignInServerErrorIsUnreachable(t *testing.T) {
	cl := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{}`)
	})

	_, err := cl.SignIn(context.Background(), "a@x.com", "secret")
	authErr, ok := types.AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, types.AuthUnreachable, authErr.Kind)
}

func TestSignInConnectionRefusedIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nadie escucha en ese puerto
	cl := New(srv.URL, "")

	_, err := cl.SignIn(context.Background(), "a@x.com", "secret")
	authErr, ok := types.AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, types.AuthUnreachable, authErr.Kind)
}

func TestSignInUnknownCode(t *testing.T) {
	cl := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"OPERATION_NOT_ALLOWED"}}`)
	})

	_, err := cl.SignIn(context.Background(), "a@x.com", "secret")
	authErr, ok := types.AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, types.AuthUnknown, authErr.Kind)
}

func TestSubjectFallbackFromIDToken(t *testing.T) {
	token := unsignedToken(t, map[string]any{"sub": "user-42"})
	cl := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(accountResponse{IDToken: token})
	})

	id, err := cl.SignIn(context.Background(), "a@x.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "user-42", id.UserID)
}

func TestNoUserIDAnywhere(t *testing.T) {
	cl := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(accountResponse{})
	})

	_, err := cl.SignIn(context.Background(), "a@x.com", "secret")
	authErr, ok := types.AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, types.AuthUnknown, authErr.Kind)
}

// unsignedToken arma un JWT alg=none suficiente para ParseUnverified.
func unsignedToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := enc(map[string]string{"alg": "none", "typ": "JWT"})
	payload := enc(claims)
	return header + "." + payload + "."
}
