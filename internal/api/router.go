// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/lifecycle"
	"github.com/tomtom215/gantry/internal/middleware"
	"github.com/tomtom215/gantry/internal/store"
)

// Coordinator is the lifecycle surface the API serves. Satisfied by
// *lifecycle.Coordinator.
type Coordinator interface {
	Predict(ctx context.Context, args map[string]any, opts ...lifecycle.CallOption) (any, error)
	ListModels() (map[string]*store.ModelInfo, error)
}

// Router builds the HTTP handler for the prediction service.
type Router struct {
	cfg       *config.Config
	coord     Coordinator
	auth      *authenticator
	startTime time.Time
}

// NewRouter creates a router serving predictions from the coordinator.
// It fails when api.auth_secret_var is set but the named environment
// variable is empty, so a misconfigured deployment never starts open.
func NewRouter(cfg *config.Config, coord Coordinator) (*Router, error) {
	rt := &Router{
		cfg:       cfg,
		coord:     coord,
		startTime: time.Now(),
	}

	if cfg.API.AuthSecretVar != "" {
		auth, err := newAuthenticator(cfg.API.AuthSecretVar)
		if err != nil {
			return nil, err
		}
		rt.auth = auth
	}

	return rt, nil
}

// Setup configures all routes and middleware and returns the handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order. CORS is
	// global so OPTIONS preflight requests are handled everywhere.
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.API.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))
	r.Use(middleware.RequestLogging())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", rt.handleHealthz)
	r.Get("/readyz", rt.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			rt.cfg.API.RateLimitRequests,
			rt.cfg.API.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(handleRateLimited),
		))
		r.Use(middleware.Prometheus())
		r.Use(middleware.Compression())
		if rt.auth != nil {
			r.Use(rt.auth.Middleware)
		}

		r.Get("/predict", rt.handlePredictGet)
		r.Post("/predict", rt.handlePredictPost)
		r.Get("/models", rt.handleModels)
	})

	return r
}

// handleRateLimited replaces httprate's plain-text 429 with the
// envelope shape clients expect.
func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).TooManyRequests("Rate limit exceeded, retry later")
}
