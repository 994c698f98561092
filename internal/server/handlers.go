package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

const maxBody = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalid, err)
	}
	return nil
}

func (s *Server) grant(w http.ResponseWriter, r *http.Request, u model.User, status int) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondWithJSON(w, status, api.AuthResponse{User: u, Token: token, ExpiresAt: &exp})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req api.Credentials
	if err := decode(w, r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	u, err := s.accounts.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.logger.Info("account created", "user", u.UID)
	s.grant(w, r, u, http.StatusCreated)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req api.Credentials
	if err := decode(w, r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	u, err := s.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.grant(w, r, u, http.StatusOK)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.accounts.User(r.Context(), UIDFrom(r.Context()))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req api.ProfileUpdate
	if err := decode(w, r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	u, err := s.accounts.SetDisplayName(r.Context(), UIDFrom(r.Context()), req.DisplayName)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.GetProfile(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if err := decode(w, r, &p); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.profiles.PutProfile(r.Context(), mux.Vars(r)["uid"], p); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todos.List(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	respondWithJSON(w, http.StatusOK, api.TodoList{Todos: todos})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTodo
	if err := decode(w, r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	t, err := s.todos.Create(r.Context(), mux.Vars(r)["uid"], req.Text, req.Completed)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	var patch model.TodoPatch
	if err := decode(w, r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	vars := mux.Vars(r)
	if err := s.todos.Update(r.Context(), vars["uid"], vars["id"], patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.todos.Delete(r.Context(), vars["uid"], vars["id"]); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
