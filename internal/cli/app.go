package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/identity"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/memstore"
	"github.com/idilsaglam/tada/internal/store/remote"
	"github.com/idilsaglam/tada/internal/todosync"
	"github.com/idilsaglam/tada/internal/ui"
)

// app is one command's wiring: a session and a syncer over the configured backend.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	p      *ui.Printer
	in     *bufio.Reader

	creds  *identity.Credentials
	sess   *identity.Session
	sync   *todosync.Syncer
	client *remote.Client
}

func newApp(opt Options, logger *log.Logger, p *ui.Printer) (*app, error) {
	cfg := opt.Config
	a := &app{cfg: cfg, logger: logger, p: p, in: bufio.NewReader(opt.In)}

	var (
		auth     identity.Authenticator
		todos    store.Store
		profiles store.ProfileStore
	)
	switch cfg.Backend {
	case config.BackendRemote:
		a.client = remote.New(cfg.ServerURL, cfg.RequestTimeout, func() string { return a.sess.Token() })
		auth, todos, profiles = a.client, a.client, a.client
	case config.BackendFile:
		js := jsonstore.New(cfg.DataDir)
		auth = identity.NewLocalAuthenticator(accounts.New(js, accounts.WithMinPassword(cfg.Server.MinPassword)))
		todos, profiles = js, js
	case config.BackendMem:
		ms := memstore.New()
		auth = identity.NewLocalAuthenticator(accounts.New(ms, accounts.WithMinPassword(cfg.Server.MinPassword)))
		todos, profiles = ms, ms
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	a.creds = identity.NewCredentials(cfg.CredentialsPath(), cfg.Token)
	a.sess = identity.NewSession(auth, profiles, a.creds, logger)
	a.sync = todosync.New(todos, logger)
	return a, nil
}

// restore resumes the stored session. Failures are logged; the caller sees a
// signed-out session.
func (a *app) restore(ctx context.Context) {
	if err := a.sess.Restore(ctx); err != nil {
		a.logger.Warn("restore session", "err", err)
	}
}

// requireUser restores the session and returns the uid, or an exit code.
func (a *app) requireUser(ctx context.Context) (string, int) {
	a.restore(ctx)
	uid := a.sess.UID()
	if uid == "" {
		a.p.Fail("not signed in. Run: tada auth login")
		return "", exitUsage
	}
	return uid, exitOK
}

// prompt prints label and reads one line. ok is false at end of input.
func (a *app) prompt(label string) (string, bool, error) {
	fmt.Fprint(a.p.Out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}
