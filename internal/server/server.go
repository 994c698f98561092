// Package server exposes accounts, profiles and per-user todo collections over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/store"
)

// Server holds the handler dependencies.
type Server struct {
	accounts *accounts.Service
	todos    store.Store
	profiles store.ProfileStore
	tokens   *Tokens
	logger   *log.Logger
	origins  []string
}

// Deps groups everything New needs.
type Deps struct {
	Accounts    *accounts.Service
	Todos       store.Store
	Profiles    store.ProfileStore
	Tokens      *Tokens
	Logger      *log.Logger
	CORSOrigins []string
}

// New builds a Server.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		accounts: d.Accounts,
		todos:    d.Todos,
		profiles: d.Profiles,
		tokens:   d.Tokens,
		logger:   logger,
		origins:  d.CORSOrigins,
	}
}

// Router wires every route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/auth/signup", s.handleSignUp).Methods("POST")
	v1.HandleFunc("/auth/signin", s.handleSignIn).Methods("POST")

	authed := v1.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/auth/me", s.handleMe).Methods("GET")
	authed.HandleFunc("/auth/profile", s.handleUpdateProfile).Methods("PATCH")

	owned := authed.PathPrefix("/users/{uid}").Subrouter()
	owned.Use(s.requireOwner)
	owned.HandleFunc("", s.handleGetProfile).Methods("GET")
	owned.HandleFunc("", s.handlePutProfile).Methods("PUT")
	owned.HandleFunc("/todos", s.handleListTodos).Methods("GET")
	owned.HandleFunc("/todos", s.handleCreateTodo).Methods("POST")
	owned.HandleFunc("/todos/{id}", s.handleUpdateTodo).Methods("PATCH")
	owned.HandleFunc("/todos/{id}", s.handleDeleteTodo).Methods("DELETE")
	return r
}

// Handler is the router behind CORS. With no configured origins, CORS is off.
func (s *Server) Handler() http.Handler {
	r := s.Router()
	if len(s.origins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)
}

// ContextKey is a custom type to avoid context key collisions.
type ContextKey string

// UIDKey holds the authenticated uid in the request context.
const UIDKey ContextKey = "uid"

// UIDFrom returns the authenticated uid stored by requireAuth.
func UIDFrom(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			s.respondErr(w, r, api.ErrUnauthenticated)
			return
		}
		uid, err := s.tokens.Verify(token)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), UIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireOwner lets a user touch only the collection under their own uid.
func (s *Server) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["uid"] != UIDFrom(r.Context()) {
			s.respondErr(w, r, store.ErrPermission)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "dur", time.Since(start))
	})
}

func bearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// respondWithJSON is a helper function to format and send JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, body := api.Encode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	respondWithJSON(w, status, body)
}
