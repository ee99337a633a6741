/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package listener provides the HTTP API server in front of the registry:
// the announce endpoint devices post to, the read API a presentation layer
// consumes, and the out-of-band admin surface.
package listener

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	srHTTP "github.com/carverauto/bootbeacon/pkg/http"
	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/registry"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server is the listener's HTTP API server.
type Server struct {
	cfg      *Config
	registry *registry.Registry
	router   *mux.Router
	logger   logger.Logger
}

func NewServer(cfg *Config, reg *registry.Registry, log logger.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		registry: reg,
		router:   mux.NewRouter(),
		logger:   log,
	}

	s.setupRoutes()

	return s
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return srHTTP.CommonMiddleware(next, s.cfg.CORS, s.logger)
	})

	s.router.HandleFunc("/announce", s.handleAnnounce).Methods(http.MethodPost)
	s.router.HandleFunc("/api/devices", s.handleListDevices).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	admin := s.router.PathPrefix("/api/admin").Subrouter()
	admin.Use(srHTTP.APIKeyMiddleware(s.cfg.APIKey, s.logger))
	admin.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	admin.HandleFunc("/sweep", s.handleSweep).Methods(http.MethodPost)
}

// Start serves until ctx is done, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("listen_addr", s.cfg.ListenAddr).Msg("Listener API serving")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
