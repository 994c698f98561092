// Package accounts implements email/password accounts over a store.AccountStore.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailInUse is returned by SignUp when the email already has an account.
	ErrEmailInUse = errors.New("email already in use")
	// ErrWeakPassword is returned by SignUp when the password is too short.
	ErrWeakPassword = errors.New("password is too weak")
	// ErrInvalidEmail is returned when the email does not parse.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrUserNotFound is returned for lookups of unknown uids.
	ErrUserNotFound = errors.New("user not found")
)

// DefaultMinPassword matches the usual hosted-auth minimum.
const DefaultMinPassword = 6

// Service validates credentials and manages account records.
type Service struct {
	store       store.AccountStore
	minPassword int
	cost        int
	now         func() time.Time
}

// Option tweaks a Service.
type Option func(*Service)

// WithMinPassword sets the minimum password length.
func WithMinPassword(n int) Option { return func(s *Service) { s.minPassword = n } }

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(c int) Option { return func(s *Service) { s.cost = c } }

// New returns a Service over st.
func New(st store.AccountStore, opts ...Option) *Service {
	s := &Service{
		store:       st,
		minPassword: DefaultMinPassword,
		cost:        bcrypt.DefaultCost,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a new account and returns its user.
func (s *Service) SignUp(ctx context.Context, email, password string) (model.User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return model.User{}, ErrInvalidEmail
	}
	if len(password) < s.minPassword {
		return model.User{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	a := model.Account{
		UID:          store.NewID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.User{}, ErrEmailInUse
		}
		return model.User{}, fmt.Errorf("create account: %w", err)
	}
	return a.User(), nil
}

// SignIn checks the password and returns the account's user.
func (s *Service) SignIn(ctx context.Context, email, password string) (model.User, error) {
	a, err := s.store.AccountByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("lookup account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return a.User(), nil
}

// User looks up an account by uid.
func (s *Service) User(ctx context.Context, uid string) (model.User, error) {
	a, err := s.store.AccountByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lookup account: %w", err)
	}
	return a.User(), nil
}

// SetDisplayName updates the account's display name.
func (s *Service) SetDisplayName(ctx context.Context, uid, name string) (model.User, error) {
	a, err := s.store.AccountByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lookup account: %w", err)
	}
	a.DisplayName = strings.TrimSpace(name)
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return model.User{}, fmt.Errorf("update account: %w", err)
	}
	return a.User(), nil
}
