// Package server provides the HTTP server for the isyarat recognition engine.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/isyarat/internal/app"
	"github.com/ayusman/isyarat/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
}

// Server represents the HTTP server for the isyarat application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		templates := api.NewTemplateHandler(a)
		s.mux.Handle("/api/templates", templates)
		s.mux.Handle("/api/templates/", templates)

		recording := api.NewRecordingHandler(a)
		s.mux.Handle("/api/recording", recording)
		s.mux.Handle("/api/recording/", recording)

		engine := api.NewEngineHandler(a)
		s.mux.HandleFunc("/api/status", engine.Status)
		s.mux.HandleFunc("/api/settings", engine.Settings)
		s.mux.HandleFunc("/api/events", engine.Events)

		s.mux.Handle("/api/perception", NewPerceptionHandler(a))

		// The preview only has frames when a local camera feeds it.
		if a.HasCamera() {
			s.mux.Handle("/api/stream", NewStreamHandler(a.Preview()))
			s.mux.HandleFunc("/api/snapshot", NewStreamHandler(a.Preview()).Snapshot)
		}
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an http.Server for addr so callers can shut it down
// gracefully.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
