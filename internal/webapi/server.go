// Package webapi exposes the backend HTTP API in front of the ingested data.
// It is a deliberate skeleton: health endpoints and CORS wiring for the
// frontend dev server, with the explicit start/shutdown lifecycle the richer
// handlers will grow into. No process-wide state; every Server owns its
// http.Server.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Defaults for zero-valued Config fields.
const (
	DefaultAddr   = ":8000"
	DefaultOrigin = "http://localhost:5173" // vite dev server
)

// Config controls the listen address and which browser origins may call the
// API.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Server is one HTTP API instance.
type Server struct {
	cfg    Config
	router *mux.Router
	srv    *http.Server
}

// NewServer builds the routes and CORS stack. Zero-valued config fields get
// defaults.
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{DefaultOrigin}
	}

	s := &Server{cfg: cfg, router: mux.NewRouter()}
	s.routes()

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowCredentials(),
	)
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors(s.router),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler. Tests drive it
// through httptest without binding a port.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"msg": "Backend up!"})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"pong": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("webapi: encode response: %v", err)
	}
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("webapi: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve runs the server over an existing listener. It returns nil after a
// graceful Shutdown, so callers can treat any non-nil return as a real
// failure.
func (s *Server) Serve(ln net.Listener) error {
	log.Printf("webapi: listening on %s", ln.Addr())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
