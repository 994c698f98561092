package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/idilsaglam/tada/internal/identity"
)

func (a *app) authSignUp(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("auth signup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "full name")
	if err := fs.Parse(args); err != nil {
		a.p.Fail("usage: tada auth signup [--email E] [--name N]")
		return exitUsage
	}
	if code := a.ask(email, "Email: "); code != exitOK {
		return code
	}
	if code := a.ask(name, "Full name: "); code != exitOK {
		return code
	}
	password, code := a.askPassword()
	if code != exitOK {
		return code
	}

	err := a.sess.SignUp(ctx, *email, password, *name)
	if a.sess.CurrentUser() == nil {
		a.p.Fail(identity.Message(err))
		return exitErr
	}
	if err != nil {
		// the account exists; only the profile follow-up failed
		a.p.Fail("signed up, but " + err.Error())
		return exitErr
	}
	a.p.OK("signed up as " + a.sess.CurrentUser().Email)
	return exitOK
}

func (a *app) authLogin(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("auth login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	withToken := fs.Bool("token", false, "paste an existing token instead of a password")
	if err := fs.Parse(args); err != nil {
		a.p.Fail("usage: tada auth login [--email E] [--token]")
		return exitUsage
	}
	if *withToken {
		return a.loginWithToken(ctx)
	}
	if code := a.ask(email, "Email: "); code != exitOK {
		return code
	}
	password, code := a.askPassword()
	if code != exitOK {
		return code
	}
	if err := a.sess.SignIn(ctx, *email, password); err != nil {
		a.p.Fail(identity.Message(err))
		return exitErr
	}
	a.p.OK("logged in as " + a.sess.CurrentUser().Email)
	return exitOK
}

func (a *app) loginWithToken(ctx context.Context) int {
	token, ok, err := a.prompt("Paste your token: ")
	if err != nil || !ok || strings.TrimSpace(token) == "" {
		a.p.Fail("read token: no token given")
		return exitUsage
	}
	if err := a.creds.Set(token, tokenExpiry(token), nil); err != nil {
		a.p.Fail("save token: " + err.Error())
		return exitErr
	}
	a.restore(ctx)
	if a.sess.CurrentUser() == nil {
		a.p.Fail("token was rejected")
		return exitErr
	}
	a.p.OK("logged in as " + a.sess.CurrentUser().Email)
	return exitOK
}

func (a *app) authLogout(ctx context.Context) int {
	if a.creds.FromEnv() {
		a.p.OK("token is provided by TADA_TOKEN env var (nothing to delete)")
		return exitOK
	}
	if err := a.sess.SignOut(ctx); err != nil {
		a.p.Fail("logout: " + err.Error())
		return exitErr
	}
	a.p.OK("logged out")
	return exitOK
}

func (a *app) authStatus(ctx context.Context) int {
	ti, err := a.creds.Get()
	if err != nil {
		a.p.Fail(err.Error())
		return exitErr
	}
	if ti == nil {
		a.p.Println(a.p.C(a.p.Theme().Muted, "not logged in"))
		a.p.Println("Run: tada auth login")
		return exitOK
	}
	a.restore(ctx)
	a.p.Println("backend:", a.backendLabel())
	a.p.Println("source:", ti.Source)
	if u := a.sess.CurrentUser(); u != nil {
		a.p.Println("user:", userLabel(u.Email, u.DisplayName))
	} else {
		a.p.Println("user: (session no longer valid)")
	}
	if ti.ExpiresAt != nil {
		a.p.Println("expires:", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		a.p.Println("expires: (unknown)")
	}
	a.p.Println("env override: TADA_TOKEN")
	return exitOK
}

// authWhoAmI decodes a JWT locally without verifying it; opaque tokens print
// the restored user instead.
func (a *app) authWhoAmI(ctx context.Context) int {
	ti, _ := a.creds.Get()
	if ti == nil {
		a.p.Fail("not logged in. Run: tada auth login")
		return exitUsage
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(ti.Token, claims); err == nil {
		b, err := json.MarshalIndent(claims, "", "  ")
		if err == nil {
			a.p.Println("JWT payload:")
			a.p.Println(string(b))
			return exitOK
		}
	}
	a.p.Println("Opaque token (cannot introspect locally).")
	a.p.Println("source:", ti.Source)
	a.restore(ctx)
	if u := a.sess.CurrentUser(); u != nil {
		a.p.Println("user:", userLabel(u.Email, u.DisplayName))
	}
	return exitOK
}

func (a *app) backendLabel() string {
	if a.client != nil {
		return a.cfg.Backend + " (" + a.cfg.ServerURL + ")"
	}
	return a.cfg.Backend
}

// ask fills *dst from the prompt when the flag was not given.
func (a *app) ask(dst *string, label string) int {
	if *dst != "" {
		return exitOK
	}
	v, ok, err := a.prompt(label)
	if err != nil {
		a.p.Fail(err.Error())
		return exitErr
	}
	if !ok {
		a.p.Fail("no input")
		return exitUsage
	}
	*dst = strings.TrimSpace(v)
	return exitOK
}

func (a *app) askPassword() (string, int) {
	pw, ok, err := a.prompt("Password: ")
	if err != nil {
		a.p.Fail(err.Error())
		return "", exitErr
	}
	if !ok {
		a.p.Fail("no password given")
		return "", exitUsage
	}
	return pw, exitOK
}

// tokenExpiry reads exp from an unverified JWT. Opaque tokens have no known expiry.
func tokenExpiry(token string) *time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	return &exp
}

func userLabel(email, name string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s (%s)", email, name)
}
