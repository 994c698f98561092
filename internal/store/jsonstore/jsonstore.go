package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// JSON-backed storage. One directory per user, human-readable, portable.
// A process-wide mutex serialises writers; fine for a local single-user CLI.

const (
	todosFileName    = "todos.json"
	profileFileName  = "profile.json"
	accountsFileName = "accounts.json"
)

// Store lays files out as <dir>/accounts.json and <dir>/users/<uid>/{todos,profile}.json.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a store rooted at dir. The directory is created lazily.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir is the root data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) userDir(uid string) (string, error) {
	if err := store.CheckUID(uid); err != nil {
		return "", err
	}
	if strings.ContainsAny(uid, `/\`) || uid == "." || uid == ".." {
		return "", store.ErrPermission
	}
	return filepath.Join(s.dir, "users", uid), nil
}

func (s *Store) load(uid string) ([]model.Todo, string, error) {
	d, err := s.userDir(uid)
	if err != nil {
		return nil, "", err
	}
	p := filepath.Join(d, todosFileName)
	items := []model.Todo{}
	if err := readJSON(p, &items); err != nil {
		return nil, "", err
	}
	return items, p, nil
}

func (s *Store) List(_ context.Context, uid string) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, _, err := s.load(uid)
	return items, err
}

func (s *Store) Create(_ context.Context, uid, text string, completed bool) (model.Todo, error) {
	if err := store.CheckCreate(uid, text); err != nil {
		return model.Todo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, p, err := s.load(uid)
	if err != nil {
		return model.Todo{}, err
	}
	t := model.Todo{ID: store.NewID(), Text: text, Completed: completed}
	if err := writeJSON(p, append(items, t)); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

func (s *Store) Update(_ context.Context, uid, id string, patch model.TodoPatch) error {
	if err := store.CheckPatch(uid, id, patch); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, p, err := s.load(uid)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items[i] = patch.Apply(items[i])
			return writeJSON(p, items)
		}
	}
	return store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, uid, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, p, err := s.load(uid)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			return writeJSON(p, items)
		}
	}
	return store.ErrNotFound
}

func (s *Store) PutProfile(_ context.Context, uid string, prof model.Profile) error {
	d, err := s.userDir(uid)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(d, profileFileName), prof)
}

func (s *Store) GetProfile(_ context.Context, uid string) (model.Profile, error) {
	d, err := s.userDir(uid)
	if err != nil {
		return model.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := filepath.Join(d, profileFileName)
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return model.Profile{}, store.ErrNotFound
	}
	var prof model.Profile
	if err := readJSON(p, &prof); err != nil {
		return model.Profile{}, err
	}
	return prof, nil
}

func (s *Store) accounts() ([]model.Account, string, error) {
	p := filepath.Join(s.dir, accountsFileName)
	accts := []model.Account{}
	if err := readJSON(p, &accts); err != nil {
		return nil, "", err
	}
	return accts, p, nil
}

func (s *Store) CreateAccount(_ context.Context, a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	accts, p, err := s.accounts()
	if err != nil {
		return err
	}
	for _, have := range accts {
		if have.Email == a.Email || have.UID == a.UID {
			return store.ErrConflict
		}
	}
	return writeJSON(p, append(accts, a))
}

func (s *Store) AccountByEmail(_ context.Context, email string) (model.Account, error) {
	return s.findAccount(func(a model.Account) bool { return a.Email == email })
}

func (s *Store) AccountByUID(_ context.Context, uid string) (model.Account, error) {
	return s.findAccount(func(a model.Account) bool { return a.UID == uid })
}

func (s *Store) findAccount(match func(model.Account) bool) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accts, _, err := s.accounts()
	if err != nil {
		return model.Account{}, err
	}
	for _, a := range accts {
		if match(a) {
			return a, nil
		}
	}
	return model.Account{}, store.ErrNotFound
}

func (s *Store) UpdateAccount(_ context.Context, a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	accts, p, err := s.accounts()
	if err != nil {
		return err
	}
	for i := range accts {
		if accts[i].UID == a.UID {
			accts[i] = a
			return writeJSON(p, accts)
		}
	}
	return store.ErrNotFound
}

// readJSON leaves v untouched when the file does not exist yet.
func readJSON(p string, v any) error {
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read file: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func writeJSON(p string, v any) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
