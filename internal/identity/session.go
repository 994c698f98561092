package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Session is the process-wide "who is signed in" object. It is built once
// and handed to every view that needs it.
type Session struct {
	auth     Authenticator
	profiles store.ProfileStore
	creds    *Credentials
	logger   *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	user    *model.User
	token   string
	expires *time.Time
	subs    map[int]func(*model.User)
	nextSub int
}

var _ Provider = (*Session)(nil)

// NewSession wires a session. creds may be nil to skip persistence.
func NewSession(auth Authenticator, profiles store.ProfileStore, creds *Credentials, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		auth:     auth,
		profiles: profiles,
		creds:    creds,
		logger:   logger.WithPrefix("auth"),
		now:      time.Now,
		subs:     make(map[int]func(*model.User)),
	}
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Session) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UID is the signed-in user's id, or "".
func (s *Session) UID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.UID
}

// Token is the bearer token for the current session, or "".
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ExpiresAt is the token expiry when known.
func (s *Session) ExpiresAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expires
}

// Subscribe registers fn for every sign-in and sign-out. Callbacks run on the
// goroutine that caused the transition, in subscription order.
func (s *Session) Subscribe(fn func(*model.User)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// SignIn authenticates and starts a session.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	g, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("sign in failed", "email", email, "err", err)
		return err
	}
	s.begin(g)
	s.notify()
	return nil
}

// SignUp creates the account, sets its display name and writes the profile
// document. The session is signed in as soon as the account exists, even if
// the follow-up writes fail.
func (s *Session) SignUp(ctx context.Context, email, password, fullName string) error {
	fullName = strings.TrimSpace(fullName)
	g, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		s.logger.Warn("sign up failed", "email", email, "err", err)
		return err
	}
	s.begin(g)
	defer s.notify()

	u, err := s.auth.SetDisplayName(ctx, g.Token, fullName)
	if err != nil {
		s.logger.Error("set display name", "user", g.User.UID, "err", err)
		return fmt.Errorf("set display name: %w", err)
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.persist()

	prof := model.Profile{FullName: fullName, Email: u.Email}
	if err := s.profiles.PutProfile(ctx, u.UID, prof); err != nil {
		s.logger.Error("write profile", "user", u.UID, "err", err)
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// SignOut ends the session and forgets the stored token.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.user, s.token, s.expires = nil, "", nil
	s.mu.Unlock()

	var err error
	if s.creds != nil && !s.creds.FromEnv() {
		err = s.creds.Delete()
	}
	s.notify()
	return err
}

// Restore resumes a stored session. Expired or rejected tokens are dropped;
// if the backend is unreachable the cached user is used.
func (s *Session) Restore(ctx context.Context) error {
	if s.creds == nil {
		return nil
	}
	ti, err := s.creds.Get()
	if err != nil || ti == nil {
		return err
	}
	if ti.Expired(s.now()) {
		s.logger.Info("stored session expired")
		return s.creds.Delete()
	}
	u, err := s.auth.Me(ctx, ti.Token)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		s.logger.Info("stored session rejected")
		if ti.Source == "env" {
			return err
		}
		return s.creds.Delete()
	case err != nil && ti.User != nil:
		s.logger.Warn("could not verify session, using cached user", "err", err)
		u = *ti.User
	case err != nil:
		return err
	}
	s.mu.Lock()
	s.user, s.token, s.expires = &u, ti.Token, ti.ExpiresAt
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Session) begin(g Grant) {
	u := g.User
	s.mu.Lock()
	s.user, s.token, s.expires = &u, g.Token, g.ExpiresAt
	s.mu.Unlock()
	s.persist()
	s.logger.Info("signed in", "user", u.UID)
}

func (s *Session) persist() {
	if s.creds == nil {
		return
	}
	s.mu.Lock()
	token, expires := s.token, s.expires
	var u *model.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	s.mu.Unlock()
	if err := s.creds.Set(token, expires, u); err != nil {
		s.logger.Warn("could not save credentials", "err", err)
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(*model.User), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	var u *model.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}
