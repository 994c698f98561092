// Package remote talks to tada-server. One Client serves as the todo store,
// the profile store and the authenticator.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/identity"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Client is an HTTP client for one server.
type Client struct {
	base  string
	http  *http.Client
	token func() string
}

var (
	_ store.Store            = (*Client)(nil)
	_ store.ProfileStore     = (*Client)(nil)
	_ identity.Authenticator = (*Client)(nil)
)

// New returns a client for baseURL. token supplies the bearer token for store calls.
func New(baseURL string, timeout time.Duration, token func() string) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		base:  baseURL,
		http:  &http.Client{Timeout: timeout},
		token: token,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func todosPath(uid string) string { return "/v1/users/" + url.PathEscape(uid) + "/todos" }

func (c *Client) List(ctx context.Context, uid string) ([]model.Todo, error) {
	if err := store.CheckUID(uid); err != nil {
		return nil, err
	}
	var out api.TodoList
	if err := c.do(ctx, http.MethodGet, todosPath(uid), c.token(), nil, &out); err != nil {
		return nil, err
	}
	return out.Todos, nil
}

func (c *Client) Create(ctx context.Context, uid, text string, completed bool) (model.Todo, error) {
	if err := store.CheckCreate(uid, text); err != nil {
		return model.Todo{}, err
	}
	var t model.Todo
	err := c.do(ctx, http.MethodPost, todosPath(uid), c.token(), api.CreateTodo{Text: text, Completed: completed}, &t)
	return t, err
}

func (c *Client) Update(ctx context.Context, uid, id string, patch model.TodoPatch) error {
	if err := store.CheckPatch(uid, id, patch); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, todosPath(uid)+"/"+url.PathEscape(id), c.token(), patch, nil)
}

func (c *Client) Delete(ctx context.Context, uid, id string) error {
	if err := store.CheckUID(uid); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, todosPath(uid)+"/"+url.PathEscape(id), c.token(), nil, nil)
}

func (c *Client) PutProfile(ctx context.Context, uid string, p model.Profile) error {
	if err := store.CheckUID(uid); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(uid), c.token(), p, nil)
}

func (c *Client) GetProfile(ctx context.Context, uid string) (model.Profile, error) {
	if err := store.CheckUID(uid); err != nil {
		return model.Profile{}, err
	}
	var p model.Profile
	err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(uid), c.token(), nil, &p)
	return p, err
}

func (c *Client) SignUp(ctx context.Context, email, password string) (identity.Grant, error) {
	return c.authenticate(ctx, "/v1/auth/signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (identity.Grant, error) {
	return c.authenticate(ctx, "/v1/auth/signin", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (identity.Grant, error) {
	var resp api.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, "", api.Credentials{Email: email, Password: password}, &resp); err != nil {
		return identity.Grant{}, err
	}
	return identity.Grant{User: resp.User, Token: resp.Token, ExpiresAt: resp.ExpiresAt}, nil
}

func (c *Client) SetDisplayName(ctx context.Context, token, name string) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodPatch, "/v1/auth/profile", token, api.ProfileUpdate{DisplayName: name}, &u)
	return u, err
}

// Me maps an unauthenticated response to identity.ErrInvalidCredentials so a
// stale stored token is dropped.
func (c *Client) Me(ctx context.Context, token string) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, "/v1/auth/me", token, nil, &u)
	if errors.Is(err, api.ErrUnauthenticated) {
		return model.User{}, fmt.Errorf("%w: %v", identity.ErrInvalidCredentials, err)
	}
	return u, err
}

// Health pings /health.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", store.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb api.ErrorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
		return api.Decode(resp.StatusCode, eb)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
