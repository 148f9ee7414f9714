package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bryanchriswhite/FocusVibrance/internal/config"
	"github.com/bryanchriswhite/FocusVibrance/internal/logger"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// Server is the read-only HTTP status API
type Server struct {
	router    *mux.Router
	hub       *Hub
	configMgr *config.Manager
	upgrader  websocket.Upgrader
	log       *zerolog.Logger
}

// NewServer creates a new status server
func NewServer(hub *Hub, configMgr *config.Manager) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		hub:       hub,
		configMgr: configMgr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Status is read-only
			},
		},
		log: logger.WithComponent("api"),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/status", s.handleGetStatus).Methods("GET")
	api.HandleFunc("/status/stream", s.handleStatusStream)
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router wrapped with CORS headers
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// ListenAndServe serves on port until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", port).Msg("Status server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status server shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.hub.Latest()
	if !ok {
		http.Error(w, "Engine not started", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snapshot)
}

func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.hub.Subscribe()
	defer s.hub.Unsubscribe(updates)

	// The stream is send-only; a read error means the client went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.Unsubscribe(updates)
				return
			}
		}
	}()

	if current, ok := s.hub.Latest(); ok {
		if err := conn.WriteJSON(current); err != nil {
			s.log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}

	for snapshot := range updates {
		if err := conn.WriteJSON(snapshot); err != nil {
			s.log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.configMgr.Get()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, cfg)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":  "healthy",
		"version": Version,
	}
	if snapshot, ok := s.hub.Latest(); ok {
		status["phase"] = string(snapshot.Phase)
	}
	writeJSON(w, status)
}
