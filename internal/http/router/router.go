// Package router arma el router HTTP del servicio: middlewares
// globales primero, despues las rutas versionadas y las de operacion.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantit/plantit/internal/http/controllers"
	httperrors "github.com/plantit/plantit/internal/http/errors"
	"github.com/plantit/plantit/internal/http/middlewares"
)

// Controllers agrupa los controllers que el router expone.
type Controllers struct {
	Provision *controllers.ProvisionController
	Profile   *controllers.ProfileController
	Guides    *controllers.GuidesController
	Health    *controllers.HealthController
}

// Options ajusta rutas opcionales del router.
type Options struct {
	// MetricsHandler es el handler de /metrics (promhttp). nil omite la ruta.
	MetricsHandler http.Handler

	// BlobDir sirve los blobs del driver fs bajo /blobs/. "" omite la ruta.
	BlobDir string
}

// New construye el router con todas las rutas del servicio.
func New(c Controllers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.WithRecover())
	r.Use(middlewares.WithRequestLogger())
	r.Use(middlewares.WithMetrics())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/provision", c.Provision.Provision)
		v1.Get("/profiles/{userID}", c.Profile.Get)
		v1.Get("/guides", c.Guides.List)
		v1.Get("/guides/{plant}", c.Guides.States)
	})

	r.Get("/healthz", c.Health.Healthz)
	r.Get("/readyz", c.Health.Readyz)

	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}

	if opts.BlobDir != "" {
		fileServer := http.StripPrefix("/blobs/", http.FileServer(http.Dir(opts.BlobDir)))
		r.Get("/blobs/*", fileServer.ServeHTTP)
	}

	return r
}
