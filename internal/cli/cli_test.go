package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/server"
	"github.com/idilsaglam/tada/internal/store/memstore"
)

type env struct {
	cfg    *config.Config
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newEnv(t *testing.T, backend string) *env {
	t.Helper()
	dir := t.TempDir()
	return &env{cfg: &config.Config{
		Backend:        backend,
		DataDir:        filepath.Join(dir, "data"),
		Home:           dir,
		Theme:          "mono",
		RequestTimeout: 5 * time.Second,
		Server:         config.ServerConfig{MinPassword: 6},
	}}
}

func (e *env) run(stdin string, args ...string) int {
	e.out.Reset()
	e.errOut.Reset()
	return Run(context.Background(), args, Options{
		Config: e.cfg,
		Logger: log.New(&e.errOut),
		In:     strings.NewReader(stdin),
		Out:    &e.out,
		Err:    &e.errOut,
	})
}

func (e *env) signUp(t *testing.T) {
	t.Helper()
	code := e.run("secret1\n", "auth", "signup", "--email", "jo@example.com", "--name", "Jo Lee")
	require.Equal(t, 0, code, e.errOut.String())
}

func TestHelpAndUsage(t *testing.T) {
	e := newEnv(t, config.BackendFile)
	assert.Equal(t, 0, e.run("", "help"))
	assert.Contains(t, e.out.String(), "Subcommands:")

	assert.Equal(t, 2, e.run(""))
	assert.Equal(t, 2, e.run("", "frobnicate"))
	assert.Contains(t, e.errOut.String(), "unknown subcommand: frobnicate")
	assert.Equal(t, 2, e.run("", "auth"))
	assert.Equal(t, 2, e.run("", "auth", "dance"))
	assert.Equal(t, 2, e.run("", "add"))
	assert.Equal(t, 2, e.run("", "ls", "--bogus"))
}

func TestRequiresSignIn(t *testing.T) {
	e := newEnv(t, config.BackendFile)
	assert.Equal(t, 2, e.run("", "add", "milk"))
	assert.Contains(t, e.errOut.String(), "not signed in")
	assert.Equal(t, 2, e.run("", "ls", "--plain"))
	assert.Equal(t, 0, e.run("", "auth", "status"))
	assert.Contains(t, e.out.String(), "not logged in")
	assert.Equal(t, 2, e.run("", "auth", "whoami"))
}

func TestTodoCommands(t *testing.T) {
	e := newEnv(t, config.BackendFile)
	e.signUp(t)
	assert.Contains(t, e.out.String(), "signed up as jo@example.com")
	_, err := os.Stat(e.cfg.CredentialsPath())
	require.NoError(t, err)

	require.Equal(t, 0, e.run("", "add", "Buy", "milk"))
	assert.Contains(t, e.out.String(), "added")
	require.Equal(t, 0, e.run("", "add", "eggs"))
	assert.Equal(t, 2, e.run("", "add", ""))
	assert.Contains(t, e.errOut.String(), "add: empty text")

	require.Equal(t, 0, e.run("", "ls", "--plain"))
	out := e.out.String()
	assert.Contains(t, out, "Todos  x 0  - 2  Total 2")
	assert.Contains(t, out, " 1. [ ] Buy milk")
	assert.Contains(t, out, " 2. [ ] eggs")

	require.Equal(t, 0, e.run("", "done", "1"))
	assert.Contains(t, e.out.String(), "toggled")
	require.Equal(t, 0, e.run("", "ls", "--plain"))
	assert.Contains(t, e.out.String(), " 1. [x] Buy milk")

	require.Equal(t, 0, e.run("", "edit", "2", "free", "range", "eggs"))
	assert.Contains(t, e.out.String(), "edited")
	require.Equal(t, 0, e.run("brown eggs\n", "edit", "2"))
	assert.Contains(t, e.out.String(), "Edit todo [free range eggs]: ")
	assert.Contains(t, e.out.String(), "edited")
	require.Equal(t, 0, e.run("", "edit", "2"))
	assert.Contains(t, e.out.String(), "unchanged")
	require.Equal(t, 0, e.run("brown eggs\n", "edit", "2"))
	assert.Contains(t, e.out.String(), "unchanged")

	require.Equal(t, 0, e.run("", "ls", "--group"))
	out = e.out.String()
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Done")
	assert.Contains(t, out, "brown eggs")

	assert.Equal(t, 2, e.run("", "rm", "5"))
	assert.Contains(t, e.errOut.String(), "index out of range: have 2, got 5")
	assert.Equal(t, 2, e.run("", "done", "x"))
	assert.Contains(t, e.errOut.String(), "done: not a number: x")

	require.Equal(t, 0, e.run("", "rm", "1"))
	assert.Contains(t, e.out.String(), "removed")
	require.Equal(t, 0, e.run("", "ls", "--plain"))
	assert.NotContains(t, e.out.String(), "] Buy milk")
	assert.Contains(t, e.out.String(), " 1. [ ] brown eggs")
}

func TestAuthCommands(t *testing.T) {
	e := newEnv(t, config.BackendFile)
	assert.Equal(t, 1, e.run("123\n", "auth", "signup", "--email", "jo@example.com", "--name", "Jo"))
	assert.Contains(t, e.errOut.String(), "Password is too short.")

	e.signUp(t)
	require.Equal(t, 0, e.run("", "auth", "status"))
	out := e.out.String()
	assert.Contains(t, out, "backend: file")
	assert.Contains(t, out, "source: file")
	assert.Contains(t, out, "user: jo@example.com (Jo Lee)")

	require.Equal(t, 0, e.run("", "auth", "whoami"))
	assert.Contains(t, e.out.String(), "Opaque token")
	assert.Contains(t, e.out.String(), "jo@example.com")

	require.Equal(t, 0, e.run("", "auth", "logout"))
	assert.Contains(t, e.out.String(), "logged out")
	assert.Equal(t, 2, e.run("", "add", "milk"))

	assert.Equal(t, 1, e.run("jo@example.com\nwrong-pw\n", "auth", "login"))
	assert.Contains(t, e.errOut.String(), "Invalid email or password.")
	require.Equal(t, 0, e.run("jo@example.com\nsecret1\n", "auth", "login"))
	assert.Contains(t, e.out.String(), "logged in as jo@example.com")
	assert.Equal(t, 0, e.run("", "add", "milk"))
}

func TestRemoteBackend(t *testing.T) {
	st := memstore.New()
	tokens, err := server.NewTokens("cli-test-secret-0123456", time.Hour)
	require.NoError(t, err)
	srv := server.New(server.Deps{
		Accounts: accounts.New(st, accounts.WithCost(bcrypt.MinCost)),
		Todos:    st,
		Profiles: st,
		Tokens:   tokens,
		Logger:   log.New(&bytes.Buffer{}),
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	e := newEnv(t, config.BackendRemote)
	e.cfg.ServerURL = ts.URL
	e.signUp(t)

	require.Equal(t, 0, e.run("", "add", "milk"))
	require.Equal(t, 0, e.run("", "ls", "--plain"))
	assert.Contains(t, e.out.String(), " 1. [ ] milk")

	require.Equal(t, 0, e.run("", "auth", "whoami"))
	assert.Contains(t, e.out.String(), "JWT payload:")
	assert.Contains(t, e.out.String(), `"email": "jo@example.com"`)

	require.Equal(t, 0, e.run("", "auth", "status"))
	assert.Contains(t, e.out.String(), "backend: remote ("+ts.URL+")")
	assert.Contains(t, e.out.String(), "expires: ")

	// a second client signs in with the first one's token
	raw, err := os.ReadFile(e.cfg.CredentialsPath())
	require.NoError(t, err)
	token := between(string(raw), `"token": "`, `"`)
	require.NotEmpty(t, token)

	other := newEnv(t, config.BackendRemote)
	other.cfg.ServerURL = ts.URL
	require.Equal(t, 0, other.run(token+"\n", "auth", "login", "--token"), other.errOut.String())
	require.Equal(t, 0, other.run("", "ls", "--plain"))
	assert.Contains(t, other.out.String(), "milk")

	assert.Equal(t, 1, other.run("garbage\n", "auth", "login", "--token"))
	assert.Contains(t, other.errOut.String(), "token was rejected")

	envOnly := newEnv(t, config.BackendRemote)
	envOnly.cfg.ServerURL = ts.URL
	envOnly.cfg.Token = token
	require.Equal(t, 0, envOnly.run("", "auth", "logout"))
	assert.Contains(t, envOnly.out.String(), "nothing to delete")
	require.Equal(t, 0, envOnly.run("", "ls", "--plain"))
	assert.Contains(t, envOnly.out.String(), "milk")
}

func TestUnreachableServer(t *testing.T) {
	e := newEnv(t, config.BackendRemote)
	e.cfg.ServerURL = "http://127.0.0.1:1"
	e.cfg.RequestTimeout = time.Second
	assert.Equal(t, 1, e.run("secret1\n", "auth", "signup", "--email", "jo@example.com", "--name", "Jo"))
	assert.Contains(t, e.errOut.String(), "Could not reach the server")
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	if j := strings.Index(s, end); j >= 0 {
		return s[:j]
	}
	return ""
}
