package webserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"briefdesk/internal/events"
	"briefdesk/internal/store"
)

type TLSConfig struct {
	Mode     string
	CertFile string
	KeyFile  string
	CacheDir string
}

type AuthConfig struct {
	JWTSecret       string
	RefreshTokenTTL string
}

type Config struct {
	Enabled bool
	Port    int
	Host    string
	TLS     TLSConfig
	Auth    AuthConfig
}

// Server exposes the briefing API and turns each websocket connection into a
// UI surface attached to the registry.
type Server struct {
	store    *store.Store
	registry *events.Registry
	cfg      Config
	logger   *slog.Logger
}

func New(st *store.Store, registry *events.Registry, cfg Config, logger *slog.Logger) *Server {
	return &Server{
		store:    st,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/briefings", s.handleBriefings)
	mux.HandleFunc("GET /api/briefings/{id}", s.handleBriefing)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("GET /", http.FileServer(staticFiles()))
	return s.requireAuth(mux)
}

// requireAuth wraps h in JWT validation when a secret is configured. The
// index page and the auth endpoints stay public; websocket clients pass the
// token as ?token= because browsers cannot set headers on ws dials.
func (s *Server) requireAuth(h http.Handler) http.Handler {
	secret := s.cfg.Auth.JWTSecret
	if secret == "" {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || strings.HasPrefix(r.URL.Path, "/api/auth/") {
			h.ServeHTTP(w, r)
			return
		}

		tokenStr := ""
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenStr = strings.TrimPrefix(auth, "Bearer ")
		} else if q := r.URL.Query().Get("token"); q != "" {
			tokenStr = q
		}
		if tokenStr == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := ValidateAccessToken(secret, tokenStr); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func (s *Server) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	tlsConf, err := s.tlsConfig()
	if err != nil {
		return fmt.Errorf("tls setup: %w", err)
	}
	srv.TLSConfig = tlsConf

	go func() {
		var err error
		if tlsConf != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error("webserver: serve failed", "err", err)
		}
	}()
	s.logger.Info("webserver: listening", "addr", addr, "tls", tlsConf != nil)
	return nil
}

type briefingsResponse struct {
	Briefings []*store.Briefing `json:"briefings"`
}

func (s *Server) handleBriefings(w http.ResponseWriter, r *http.Request) {
	briefings, err := s.store.LoadBriefings()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	// The list view never needs full bodies.
	for _, b := range briefings {
		b.Body = ""
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(briefingsResponse{Briefings: briefings})
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad briefing id", 400)
		return
	}
	b, err := s.store.GetBriefing(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "briefing not found", 404)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}
