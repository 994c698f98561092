package identity

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/memstore"
)

type fixture struct {
	store   *memstore.Store
	auth    *LocalAuthenticator
	creds   *Credentials
	session *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	auth := NewLocalAuthenticator(accounts.New(st, accounts.WithCost(bcrypt.MinCost)))
	creds := NewCredentials(filepath.Join(t.TempDir(), "tada", "credentials.json"), "")
	var buf bytes.Buffer
	return &fixture{
		store:   st,
		auth:    auth,
		creds:   creds,
		session: NewSession(auth, st, creds, log.New(&buf)),
	}
}

func TestSignUpSetsDisplayNameAndProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.session.SignUp(ctx, "a@b.com", "pw123456", "Jo Lee"))

	u := f.session.CurrentUser()
	require.NotNil(t, u)
	assert.Equal(t, "Jo Lee", u.DisplayName)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, "JL", Initials(u.DisplayName))

	prof, err := f.store.GetProfile(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, model.Profile{FullName: "Jo Lee", Email: "a@b.com"}, prof)
}

func TestSignInAndOutNotifySubscribers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.SignUp(ctx, "a@b.com", "pw123456", "Jo Lee"))
	require.NoError(t, f.session.SignOut(ctx))

	var seen []*model.User
	unsubscribe := f.session.Subscribe(func(u *model.User) { seen = append(seen, u) })

	require.NoError(t, f.session.SignIn(ctx, "a@b.com", "pw123456"))
	require.NoError(t, f.session.SignOut(ctx))
	unsubscribe()
	unsubscribe()
	require.NoError(t, f.session.SignIn(ctx, "a@b.com", "pw123456"))

	require.Len(t, seen, 2)
	require.NotNil(t, seen[0])
	assert.Equal(t, "Jo Lee", seen[0].DisplayName)
	assert.Nil(t, seen[1])
}

func TestSubscribersRunInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var order []int
	for i := 0; i < 5; i++ {
		f.session.Subscribe(func(*model.User) { order = append(order, i) })
	}
	require.NoError(t, f.session.SignOut(ctx))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSignInFailureKeepsSignedOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	calls := 0
	f.session.Subscribe(func(*model.User) { calls++ })

	err := f.session.SignIn(ctx, "nobody@b.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid email or password.", Message(err))
	assert.Nil(t, f.session.CurrentUser())
	assert.Zero(t, calls)
}

func TestRestoreResumesStoredSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.SignUp(ctx, "a@b.com", "pw123456", "Jo Lee"))
	uid := f.session.UID()

	fresh := NewSession(f.auth, f.store, f.creds, nil)
	var got *model.User
	fresh.Subscribe(func(u *model.User) { got = u })
	require.NoError(t, fresh.Restore(ctx))
	require.NotNil(t, got)
	assert.Equal(t, uid, got.UID)
	assert.Equal(t, "Jo Lee", got.DisplayName)
	assert.Equal(t, f.session.Token(), fresh.Token())
}

func TestRestoreDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.creds.Set("local.u1", &past, nil))

	require.NoError(t, f.session.Restore(ctx))
	assert.Nil(t, f.session.CurrentUser())
	ti, err := f.creds.Get()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestRestoreDropsRejectedToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Set("local.ghost", nil, nil))

	require.NoError(t, f.session.Restore(ctx))
	assert.Nil(t, f.session.CurrentUser())
	ti, err := f.creds.Get()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

type downAuth struct{ *LocalAuthenticator }

func (downAuth) Me(context.Context, string) (model.User, error) {
	return model.User{}, errors.New("dial tcp: connection refused")
}

func TestRestoreFallsBackToCachedUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cached := &model.User{UID: "u1", Email: "a@b.com", DisplayName: "Jo Lee"}
	require.NoError(t, f.creds.Set("local.u1", nil, cached))

	s := NewSession(downAuth{f.auth}, f.store, f.creds, nil)
	require.NoError(t, s.Restore(ctx))
	assert.Equal(t, cached, s.CurrentUser())
}

func TestCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "credentials.json")
	c := NewCredentials(path, "")

	ti, err := c.Get()
	require.NoError(t, err)
	assert.Nil(t, ti)

	require.NoError(t, c.Set("Bearer abc", nil, nil))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	ti, err = c.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc", ti.Token)
	assert.Equal(t, "file", ti.Source)

	require.NoError(t, c.Delete())
	require.NoError(t, c.Delete())
	assert.Error(t, c.Set("  ", nil, nil))
}

func TestCredentialsEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	c := NewCredentials(path, "bearer from-env")
	require.NoError(t, c.Set("ignored", nil, nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	ti, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, "env", ti.Source)
	assert.True(t, c.FromEnv())
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Jo Lee", "JL"},
		{"ada", "A"},
		{"  mary   ann  smith ", "MAS"},
		{"élodie durand", "ÉD"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Initials(tt.name); got != tt.want {
			t.Errorf("Initials(%q): got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "That email already has an account.", Message(ErrEmailInUse))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
