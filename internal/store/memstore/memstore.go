// Package memstore is an in-memory Store, used by tests and the `mem` backend.
package memstore

import (
	"context"
	"sync"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Store keeps each user's todos in insertion order.
type Store struct {
	mu       sync.Mutex
	todos    map[string][]model.Todo
	profiles map[string]model.Profile
	accounts map[string]model.Account // by uid
}

// New returns an empty store.
func New() *Store {
	return &Store{
		todos:    make(map[string][]model.Todo),
		profiles: make(map[string]model.Profile),
		accounts: make(map[string]model.Account),
	}
}

func (s *Store) List(_ context.Context, uid string) ([]model.Todo, error) {
	if err := store.CheckUID(uid); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, len(s.todos[uid]))
	copy(out, s.todos[uid])
	return out, nil
}

func (s *Store) Create(_ context.Context, uid, text string, completed bool) (model.Todo, error) {
	if err := store.CheckCreate(uid, text); err != nil {
		return model.Todo{}, err
	}
	t := model.Todo{ID: store.NewID(), Text: text, Completed: completed}
	s.mu.Lock()
	s.todos[uid] = append(s.todos[uid], t)
	s.mu.Unlock()
	return t, nil
}

func (s *Store) Update(_ context.Context, uid, id string, patch model.TodoPatch) error {
	if err := store.CheckPatch(uid, id, patch); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.todos[uid] {
		if t.ID == id {
			s.todos[uid][i] = patch.Apply(t)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, uid, id string) error {
	if err := store.CheckUID(uid); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.todos[uid]
	for i, t := range items {
		if t.ID == id {
			s.todos[uid] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) PutProfile(_ context.Context, uid string, p model.Profile) error {
	if err := store.CheckUID(uid); err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles[uid] = p
	s.mu.Unlock()
	return nil
}

func (s *Store) GetProfile(_ context.Context, uid string) (model.Profile, error) {
	if err := store.CheckUID(uid); err != nil {
		return model.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	if !ok {
		return model.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) CreateAccount(_ context.Context, a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.accounts {
		if have.Email == a.Email {
			return store.ErrConflict
		}
	}
	if _, ok := s.accounts[a.UID]; ok {
		return store.ErrConflict
	}
	s.accounts[a.UID] = a
	return nil
}

func (s *Store) AccountByEmail(_ context.Context, email string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Account{}, store.ErrNotFound
}

func (s *Store) AccountByUID(_ context.Context, uid string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return model.Account{}, store.ErrNotFound
	}
	return a, nil
}

func (s *Store) UpdateAccount(_ context.Context, a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.UID]; !ok {
		return store.ErrNotFound
	}
	s.accounts[a.UID] = a
	return nil
}
