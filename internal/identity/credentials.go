package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/model"
)

// TokenInfo is what survives between runs.
type TokenInfo struct {
	Token     string      `json:"token"`
	Source    string      `json:"source"`     // "env" | "file"
	CreatedAt time.Time   `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time  `json:"expires_at"` // optional (JWT or server-provided)
	User      *model.User `json:"user,omitempty"`
}

// Expired reports whether the token has a known expiry in the past.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti.ExpiresAt != nil && !now.Before(*ti.ExpiresAt)
}

// Credentials persists the session token to a 0600 file. A non-empty
// env token takes precedence and is never written or deleted.
type Credentials struct {
	path     string
	envToken string
	now      func() time.Time
}

// NewCredentials stores tokens at path; envToken usually comes from TADA_TOKEN.
func NewCredentials(path, envToken string) *Credentials {
	return &Credentials{path: path, envToken: stripBearer(strings.TrimSpace(envToken)), now: time.Now}
}

// Get returns nil, nil when nothing is stored.
func (c *Credentials) Get() (*TokenInfo, error) {
	if c.envToken != "" {
		return &TokenInfo{Token: c.envToken, Source: "env"}, nil
	}
	b, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// Set writes the token file. It is a no-op while an env token is in use.
func (c *Credentials) Set(token string, expires *time.Time, user *model.User) error {
	if c.envToken != "" {
		return nil
	}
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	// ensure the directory exists with 0700
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: c.now(),
		ExpiresAt: expires,
		User:      user,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	// write with 0600 (owner-only)
	if err := os.WriteFile(c.path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes the token file; a missing file is fine.
func (c *Credentials) Delete() error {
	if err := os.Remove(c.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// FromEnv reports whether the token comes from the environment.
func (c *Credentials) FromEnv() bool { return c.envToken != "" }

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
