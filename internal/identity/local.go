package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/model"
)

const localTokenPrefix = "local."

// LocalAuthenticator signs in against an in-process account service.
// Its tokens are the uid behind a fixed prefix and never expire.
type LocalAuthenticator struct {
	accounts *accounts.Service
}

// NewLocalAuthenticator wraps svc.
func NewLocalAuthenticator(svc *accounts.Service) *LocalAuthenticator {
	return &LocalAuthenticator{accounts: svc}
}

func (a *LocalAuthenticator) SignUp(ctx context.Context, email, password string) (Grant, error) {
	u, err := a.accounts.SignUp(ctx, email, password)
	if err != nil {
		return Grant{}, err
	}
	return Grant{User: u, Token: localTokenPrefix + u.UID}, nil
}

func (a *LocalAuthenticator) SignIn(ctx context.Context, email, password string) (Grant, error) {
	u, err := a.accounts.SignIn(ctx, email, password)
	if err != nil {
		return Grant{}, err
	}
	return Grant{User: u, Token: localTokenPrefix + u.UID}, nil
}

func (a *LocalAuthenticator) SetDisplayName(ctx context.Context, token, name string) (model.User, error) {
	uid, err := localUID(token)
	if err != nil {
		return model.User{}, err
	}
	return a.accounts.SetDisplayName(ctx, uid, name)
}

func (a *LocalAuthenticator) Me(ctx context.Context, token string) (model.User, error) {
	uid, err := localUID(token)
	if err != nil {
		return model.User{}, err
	}
	u, err := a.accounts.User(ctx, uid)
	if errors.Is(err, accounts.ErrUserNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, err
}

func localUID(token string) (string, error) {
	uid, ok := strings.CutPrefix(token, localTokenPrefix)
	if !ok || uid == "" {
		return "", ErrInvalidCredentials
	}
	return uid, nil
}
