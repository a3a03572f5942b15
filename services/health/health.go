// Package health exposes the liveness endpoint hosting platforms poll to
// keep the scout process alive.
package health

import (
	"encoding/json"
	"net/http"

	"resalescout/logger"
)

// Server serves the liveness endpoints
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a health server listening on addr
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
			"bot":    "resale-scout",
		})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start serves until Close. Intended to run in its own goroutine; a
// listen failure is logged, not fatal, since the scout itself keeps
// working without the endpoint.
func (s *Server) Start() {
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Health server failed: %v", err)
	}
}

// Close shuts the server down
func (s *Server) Close() error {
	return s.srv.Close()
}
