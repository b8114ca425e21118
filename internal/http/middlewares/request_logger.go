package middlewares

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/plantit/plantit/internal/observability/logger"
)

// statusWriter registra el status code escrito.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// WithRequestLogger asigna un request_id, inyecta un logger scoped en
// el contexto y loguea cada request al terminar.
func WithRequestLogger() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}

			log := logger.L().With(logger.RequestID(reqID))
			ctx := logger.ToContext(r.Context(), log)

			sw := &statusWriter{ResponseWriter: w}
			w.Header().Set("X-Request-ID", reqID)

			start := time.Now()
			next.ServeHTTP(sw, r.WithContext(ctx))

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request",
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Status(status),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
