// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

// Package server exposes the chat proxy over HTTP: a health endpoint and a
// single POST endpoint that validates the request, applies the global
// cooldown, and dispatches to a provider.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/duet-chat/duet/internal/provider"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr     string
	CORSOrigins    []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CooldownWindow time.Duration
	// Now supplies the cooldown clock. Defaults to time.Now.
	Now func() time.Time
}

// Server wraps a chi router with a huma API and the chat proxy route.
type Server struct {
	router   chi.Router
	api      huma.API
	cfg      Config
	cooldown *Cooldown
	registry *provider.Registry
}

// New creates a Server with chi router, huma API, health endpoint, CORS,
// and the chat route dispatching through reg.
func New(cfg Config, reg *provider.Registry) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, duerr.New(duerr.CodeServerConfigInvalid, "listen address is required")
	}
	if reg == nil {
		return nil, duerr.New(duerr.CodeServerConfigInvalid, "provider registry is required")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.CooldownWindow == 0 {
		cfg.CooldownWindow = DefaultCooldownWindow
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware(cfg.CORSOrigins))

	humaConfig := huma.DefaultConfig("Duet Proxy", "0.1.0")
	humaConfig.Info.Description = "Chat proxy forwarding conversations to hosted model providers"
	api := humachi.New(r, humaConfig)

	// Health endpoint
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: HealthBody{Status: "ok"}}, nil
	})

	srv := &Server{
		router:   r,
		api:      api,
		cfg:      cfg,
		cooldown: NewCooldown(cfg.CooldownWindow, cfg.Now),
		registry: reg,
	}

	srv.registerChatRoute()

	return srv, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return duerr.Wrapf(err, duerr.CodeServerInternalFailure, "listening on %s", s.cfg.ListenAddr)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return duerr.Wrapf(err, duerr.CodeServerInternalFailure, "shutting down")
	}

	return <-errCh
}

// HealthBody is the JSON body of the health endpoint response.
type HealthBody struct {
	Status string `json:"status" example:"ok" doc:"Health status"`
}

// HealthResponse wraps the health check response.
type HealthResponse struct {
	Body HealthBody
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
