// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package remoteuser

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/z5labs/blockbuilder/pkg/noop"
	"github.com/z5labs/blockbuilder/pkg/slogfield"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server is an in-memory implementation of the users API.
type Server struct {
	log *slog.Logger
	now func() time.Time
	mux *http.ServeMux

	mu     sync.Mutex
	byName map[string]string
	users  map[string]User
	events map[string][]time.Time
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// ServerLogHandler configures where the Server logs.
func ServerLogHandler(h slog.Handler) ServerOption {
	return func(s *Server) {
		s.log = slog.New(h)
	}
}

// Clock overrides the time source, which is mostly useful in tests.
func Clock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer returns an empty users API.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		log:    noop.Logger(),
		now:    time.Now,
		mux:    http.NewServeMux(),
		byName: make(map[string]string),
		users:  make(map[string]User),
		events: make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.Handle("POST /users", otelhttp.WithRouteTag("/users", http.HandlerFunc(s.createUser)))
	s.mux.Handle("GET /users/{id}/activity", otelhttp.WithRouteTag("/users/{id}/activity", http.HandlerFunc(s.activity)))
	return s
}

// Handler returns the Server wrapped with OpenTelemetry instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s, "remoteuser")
}

// ServeHTTP implements the [http.Handler] interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[req.Username]; exists {
		writeError(w, http.StatusConflict, "username already exists")
		return
	}

	now := s.now()
	user := User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		CreatedAt: now,
	}
	s.byName[user.Username] = user.ID
	s.users[user.ID] = user
	s.events[user.ID] = append(s.events[user.ID], now)

	s.log.InfoContext(
		r.Context(),
		"created user",
		slogfield.String("user_id", user.ID),
		slogfield.String("request_id", r.Header.Get(requestIDHeader)),
	)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) activity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	window := time.Hour
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "invalid window")
			return
		}
		window = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	since := s.now().Add(-window)
	n := 0
	for _, ts := range s.events[id] {
		if !ts.Before(since) {
			n++
		}
	}

	writeJSON(w, http.StatusOK, Activity{
		UserID: id,
		Window: window.String(),
		Events: n,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
