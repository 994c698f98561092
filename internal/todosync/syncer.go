// Package todosync keeps a local, ordered list of todos in step with a user's
// remote collection.
//
// Every mutation goes to the store first and is applied locally only once the
// store confirms it. A failed call is logged and returned; the local list is
// never reverted, retried or queued. Load failures leave the list empty.
package todosync

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

var (
	// ErrNoSession is returned when an operation is attempted without a user.
	ErrNoSession = errors.New("not signed in")
	// ErrEmptyText is returned by Add for an empty string.
	ErrEmptyText = errors.New("todo text is empty")
	// ErrUnknownTodo is returned when the id is not in the local list.
	ErrUnknownTodo = errors.New("todo is not in the local list")
)

// Prompter collects replacement text for an edit. ok=false means the user cancelled.
type Prompter interface {
	Prompt(ctx context.Context, current string) (text string, ok bool, err error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, current string) (string, bool, error)

func (f PrompterFunc) Prompt(ctx context.Context, current string) (string, bool, error) {
	return f(ctx, current)
}

// Syncer is the local mirror of one user's todo collection.
//
// Methods may be called from any goroutine; the lock is never held across a
// store call. Results of calls that were in flight when Reset ran are dropped.
type Syncer struct {
	store  store.Store
	logger *log.Logger

	mu      sync.Mutex
	todos   []model.Todo
	loads   int
	loadErr error
	gen     uint64
}

// New returns an empty Syncer over st.
func New(st store.Store, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.Default()
	}
	return &Syncer{store: st, logger: logger.WithPrefix("sync")}
}

// Todos returns a copy of the local list in display order.
func (s *Syncer) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Len is the number of local todos.
func (s *Syncer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos)
}

// Loading reports whether a Load is in flight.
func (s *Syncer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads > 0
}

// LoadErr is the error from the most recent Load, if it failed.
func (s *Syncer) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Stats counts completed and pending todos.
func (s *Syncer) Stats() (done, pending int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return done, pending
}

// Reset clears the list, typically on sign-out.
func (s *Syncer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = nil
	s.loads = 0
	s.loadErr = nil
	s.gen++
}

// Load replaces the local list with the store's records for uid.
func (s *Syncer) Load(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrNoSession
	}
	s.mu.Lock()
	s.loads++
	gen := s.gen
	s.mu.Unlock()

	todos, err := s.store.List(ctx, uid)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.loads--
	s.loadErr = err
	if err != nil {
		s.todos = nil
		s.logger.Error("fetch todos", "op", "load", "user", uid, "err", err)
		return err
	}
	s.todos = todos
	s.logger.Debug("loaded todos", "user", uid, "count", len(todos))
	return nil
}

// Add creates a pending todo and appends it once the store assigns an id.
func (s *Syncer) Add(ctx context.Context, uid, text string) (model.Todo, error) {
	if uid == "" {
		return model.Todo{}, ErrNoSession
	}
	if text == "" {
		return model.Todo{}, ErrEmptyText
	}
	gen := s.generation()
	t, err := s.store.Create(ctx, uid, text, false)
	if err != nil {
		s.logger.Error("add todo", "op", "add", "user", uid, "err", err)
		return model.Todo{}, err
	}
	s.apply(gen, func() { s.todos = append(s.todos, t) })
	return t, nil
}

// Toggle writes completed = !current and then flips the local record.
func (s *Syncer) Toggle(ctx context.Context, uid, id string, current bool) error {
	if uid == "" {
		return ErrNoSession
	}
	gen := s.generation()
	next := !current
	if err := s.store.Update(ctx, uid, id, model.SetCompleted(next)); err != nil {
		s.logger.Error("toggle todo", "op", "toggle", "user", uid, "id", id, "err", err)
		return err
	}
	s.apply(gen, func() {
		if i := s.index(id); i >= 0 {
			s.todos[i].Completed = next
		}
	})
	return nil
}

// Edit replaces the text of id. Empty or unchanged text is a no-op.
func (s *Syncer) Edit(ctx context.Context, uid, id, newText string) error {
	if uid == "" {
		return ErrNoSession
	}
	current, ok := s.lookup(id)
	if !ok {
		return ErrUnknownTodo
	}
	if newText == "" || newText == current.Text {
		return nil
	}
	gen := s.generation()
	if err := s.store.Update(ctx, uid, id, model.SetText(newText)); err != nil {
		s.logger.Error("edit todo", "op", "edit", "user", uid, "id", id, "err", err)
		return err
	}
	s.apply(gen, func() {
		if i := s.index(id); i >= 0 {
			s.todos[i].Text = newText
		}
	})
	return nil
}

// EditWithPrompt asks p for replacement text, then behaves like Edit.
func (s *Syncer) EditWithPrompt(ctx context.Context, uid, id string, p Prompter) error {
	if uid == "" {
		return ErrNoSession
	}
	current, ok := s.lookup(id)
	if !ok {
		return ErrUnknownTodo
	}
	text, ok, err := p.Prompt(ctx, current.Text)
	if err != nil || !ok {
		return err
	}
	return s.Edit(ctx, uid, id, text)
}

// Delete removes id from the store and then from the local list.
func (s *Syncer) Delete(ctx context.Context, uid, id string) error {
	if uid == "" {
		return ErrNoSession
	}
	gen := s.generation()
	if err := s.store.Delete(ctx, uid, id); err != nil {
		s.logger.Error("delete todo", "op", "delete", "user", uid, "id", id, "err", err)
		return err
	}
	s.apply(gen, func() {
		if i := s.index(id); i >= 0 {
			s.todos = append(s.todos[:i:i], s.todos[i+1:]...)
		}
	})
	return nil
}

func (s *Syncer) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// apply runs fn under the lock unless a Reset happened since gen was read.
func (s *Syncer) apply(gen uint64, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	fn()
}

func (s *Syncer) lookup(id string) (model.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.todos[i], true
	}
	return model.Todo{}, false
}

// index must be called with mu held.
func (s *Syncer) index(id string) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
