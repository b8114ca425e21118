// Package middlewares contains the HTTP middleware chain.
package middlewares

import "net/http"

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler
