// Package server construye el servicio completo a partir de la
// configuración: adapters, orquestador, controllers y router.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/plantit/plantit/internal/blob"
	blobfs "github.com/plantit/plantit/internal/blob/fs"
	blobapi "github.com/plantit/plantit/internal/blob/httpapi"
	"github.com/plantit/plantit/internal/cache"
	"github.com/plantit/plantit/internal/catalog"
	"github.com/plantit/plantit/internal/config"
	"github.com/plantit/plantit/internal/http/controllers"
	"github.com/plantit/plantit/internal/http/middlewares"
	"github.com/plantit/plantit/internal/http/router"
	"github.com/plantit/plantit/internal/identity"
	identityapi "github.com/plantit/plantit/internal/identity/httpapi"
	identitylocal "github.com/plantit/plantit/internal/identity/local"
	"github.com/plantit/plantit/internal/notify"
	"github.com/plantit/plantit/internal/observability/logger"
	"github.com/plantit/plantit/internal/profile"
	profilefs "github.com/plantit/plantit/internal/profile/fs"
	profilepg "github.com/plantit/plantit/internal/profile/pg"
	"github.com/plantit/plantit/internal/provision"
)

// Server agrupa el handler HTTP listo para servir y los recursos que
// hay que cerrar al apagar.
type Server struct {
	Handler http.Handler

	closers []func()
}

// Close libera conexiones (pool de postgres, redis).
func (s *Server) Close() {
	for _, fn := range s.closers {
		fn()
	}
}

// Build arma el servicio completo según cfg.
func Build(ctx context.Context, cfg *config.Config) (*Server, error) {
	log := logger.L().With(logger.Component("server"))
	srv := &Server{}

	// --- identity ---
	var ident identity.Client
	switch cfg.Identity.Driver {
	case "httpapi":
		if cfg.Identity.BaseURL == "" {
			return nil, fmt.Errorf("server: identity.base_url is required for the httpapi driver")
		}
		ident = identityapi.New(cfg.Identity.BaseURL, cfg.Identity.APIKey,
			identityapi.WithTimeout(cfg.Identity.Timeout))
	case "local", "":
		ident = identitylocal.New()
	default:
		return nil, fmt.Errorf("server: unknown identity driver %q", cfg.Identity.Driver)
	}

	// --- blob store ---
	var blobs blob.Store
	var blobDir string
	switch cfg.Blob.Driver {
	case "httpapi":
		if cfg.Blob.BaseURL == "" {
			return nil, fmt.Errorf("server: blob.base_url is required for the httpapi driver")
		}
		blobs = blobapi.New(cfg.Blob.BaseURL, cfg.Blob.Token,
			blobapi.WithTimeout(cfg.Blob.Timeout))
	case "fs", "":
		root := cfg.Blob.Root
		if root == "" {
			root = "data/blobs"
		}
		store, err := blobfs.New(root, cfg.Blob.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("server: blob store: %w", err)
		}
		blobs = store
		blobDir = root
	default:
		return nil, fmt.Errorf("server: unknown blob driver %q", cfg.Blob.Driver)
	}

	// --- profile repository ---
	pingers := map[string]controllers.Pinger{}

	var inner profile.Repository
	switch cfg.Profile.Driver {
	case "pg":
		repo, err := profilepg.Connect(ctx, cfg.Profile.DSN)
		if err != nil {
			return nil, fmt.Errorf("server: profile repo: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("server: profile schema: %w", err)
		}
		srv.closers = append(srv.closers, repo.Close)
		pingers["postgres"] = repo
		inner = repo
	case "fs", "":
		root := cfg.Profile.Root
		if root == "" {
			root = "data/profiles"
		}
		repo, err := profilefs.New(root)
		if err != nil {
			return nil, fmt.Errorf("server: profile repo: %w", err)
		}
		inner = repo
	default:
		return nil, fmt.Errorf("server: unknown profile driver %q", cfg.Profile.Driver)
	}

	cacheClient, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("server: cache: %w", err)
	}
	srv.closers = append(srv.closers, func() { _ = cacheClient.Close() })
	if cfg.Cache.Kind == "redis" {
		pingers["redis"] = cacheClient
	}
	profiles := profile.NewCached(inner, cacheClient, cfg.Cache.TTL)

	// --- completion hook ---
	var hook provision.Hook
	if cfg.SMTP.Host != "" {
		sender := notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From,
			cfg.SMTP.Username, cfg.SMTP.Password)
		if cfg.SMTP.TLS != "" {
			sender.TLSMode = cfg.SMTP.TLS
		}
		sender.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		hook = notify.WelcomeHook(sender)
	} else {
		log.Info("smtp host not configured, welcome emails disabled")
	}

	// --- workflow service ---
	service := provision.New(provision.Deps{
		Identity:    ident,
		Blobs:       blobs,
		Profiles:    profiles,
		OnComplete:  hook,
		CallTimeout: cfg.Provision.CallTimeout,
	})

	// --- guide catalog ---
	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("server: catalog: %w", err)
	}

	// --- metrics ---
	if err := provision.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("server: provision metrics: %w", err)
	}
	metricsHandler, err := middlewares.RegisterMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("server: http metrics: %w", err)
	}

	srv.Handler = router.New(router.Controllers{
		Provision: controllers.NewProvisionController(service),
		Profile:   controllers.NewProfileController(profiles),
		Guides:    controllers.NewGuidesController(cat),
		Health:    controllers.NewHealthController(pingers),
	}, router.Options{MetricsHandler: metricsHandler, BlobDir: blobDir})

	log.Info("service wired",
		logger.String("identity_driver", cfg.Identity.Driver),
		logger.String("blob_driver", cfg.Blob.Driver),
		logger.String("profile_driver", cfg.Profile.Driver),
		logger.String("cache_kind", cfg.Cache.Kind),
	)
	return srv, nil
}
