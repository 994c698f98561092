// Package identity tracks who is signed in and tells interested views when that changes.
package identity

import (
	"context"
	"time"

	"github.com/idilsaglam/tada/internal/model"
)

// Provider is the session surface the presentation layer depends on.
type Provider interface {
	CurrentUser() *model.User
	Subscribe(fn func(*model.User)) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, fullName string) error
	SignOut(ctx context.Context) error
}

// Grant is a successful authentication.
type Grant struct {
	User      model.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Authenticator is the backend a Session signs in against.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (Grant, error)
	SignIn(ctx context.Context, email, password string) (Grant, error)
	SetDisplayName(ctx context.Context, token, name string) (model.User, error)
	Me(ctx context.Context, token string) (model.User, error)
}
