// Package api holds the JSON shapes and error codes shared by tada-server and its client.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Credentials is the sign-in and sign-up request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by sign-in and sign-up.
type AuthResponse struct {
	User      model.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ProfileUpdate is the PATCH /v1/auth/profile body.
type ProfileUpdate struct {
	DisplayName string `json:"display_name"`
}

// CreateTodo is the POST /v1/users/{uid}/todos body.
type CreateTodo struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoList wraps a listing so the body can grow fields later.
type TodoList struct {
	Todos []model.Todo `json:"todos"`
}

// ErrorBody is every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrUnauthenticated is returned for missing or bad bearer tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

type errorCode struct {
	err    error
	code   string
	status int
}

var codes = []errorCode{
	{store.ErrNotFound, "not_found", http.StatusNotFound},
	{store.ErrPermission, "permission_denied", http.StatusForbidden},
	{store.ErrInvalid, "invalid_argument", http.StatusBadRequest},
	{store.ErrConflict, "already_exists", http.StatusConflict},
	{accounts.ErrInvalidCredentials, "invalid_credentials", http.StatusUnauthorized},
	{accounts.ErrEmailInUse, "email_in_use", http.StatusConflict},
	{accounts.ErrWeakPassword, "weak_password", http.StatusBadRequest},
	{accounts.ErrInvalidEmail, "invalid_email", http.StatusBadRequest},
	{accounts.ErrUserNotFound, "user_not_found", http.StatusNotFound},
	{ErrUnauthenticated, "unauthenticated", http.StatusUnauthorized},
}

// Encode maps err to a status and body. Unknown errors become 500 "internal".
func Encode(err error) (int, ErrorBody) {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.status, ErrorBody{Error: c.err.Error(), Code: c.code}
		}
	}
	return http.StatusInternalServerError, ErrorBody{Error: "internal error", Code: "internal"}
}

// Decode maps a response back to a sentinel error when the code is known.
func Decode(status int, body ErrorBody) error {
	for _, c := range codes {
		if body.Code == c.code {
			return c.err
		}
	}
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusNotFound:
		return store.ErrNotFound
	case status >= 500:
		return store.ErrUnavailable
	}
	if body.Error != "" {
		return errors.New(body.Error)
	}
	return errors.New(http.StatusText(status))
}
