package todosync

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/memstore"
)

var errNetwork = errors.New("network down")

// flakyStore wraps a memstore, counts calls and fails the ops named in fail.
type flakyStore struct {
	*memstore.Store

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
	block chan struct{} // when set, List waits on it
}

func newFlaky() *flakyStore {
	return &flakyStore{
		Store: memstore.New(),
		calls: map[string]int{},
		fail:  map[string]error{},
	}
}

func (f *flakyStore) hit(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op]
}

func (f *flakyStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *flakyStore) setFail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *flakyStore) List(ctx context.Context, uid string) ([]model.Todo, error) {
	if f.block != nil {
		<-f.block
	}
	if err := f.hit("list"); err != nil {
		return nil, err
	}
	return f.Store.List(ctx, uid)
}

func (f *flakyStore) Create(ctx context.Context, uid, text string, completed bool) (model.Todo, error) {
	if err := f.hit("create"); err != nil {
		return model.Todo{}, err
	}
	return f.Store.Create(ctx, uid, text, completed)
}

func (f *flakyStore) Update(ctx context.Context, uid, id string, patch model.TodoPatch) error {
	if err := f.hit("update"); err != nil {
		return err
	}
	return f.Store.Update(ctx, uid, id, patch)
}

func (f *flakyStore) Delete(ctx context.Context, uid, id string) error {
	if err := f.hit("delete"); err != nil {
		return err
	}
	return f.Store.Delete(ctx, uid, id)
}

func newSyncer(st store.Store) (*Syncer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(st, log.New(&buf)), &buf
}

const (
	uid         = "user-1"
	testTimeout = time.Second
	testTick    = 5 * time.Millisecond
)

func TestAddAppendsBuyMilk(t *testing.T) {
	ctx := context.Background()
	s, _ := newSyncer(memstore.New())
	require.NoError(t, s.Load(ctx, uid))
	_, err := s.Add(ctx, uid, "Walk dog")
	require.NoError(t, err)

	before := s.Len()
	added, err := s.Add(ctx, uid, "Buy milk")
	require.NoError(t, err)

	todos := s.Todos()
	require.Len(t, todos, before+1)
	last := todos[len(todos)-1]
	assert.Equal(t, added.ID, last.ID)
	assert.Equal(t, "Buy milk", last.Text)
	assert.False(t, last.Completed)
}

func TestLoadFailureLeavesEmptyList(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	s, logs := newSyncer(st)

	_, err := s.Add(ctx, uid, "cached")
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	st.setFail("list", errNetwork)
	assert.NotPanics(t, func() { err = s.Load(ctx, uid) })
	assert.ErrorIs(t, err, errNetwork)
	assert.Empty(t, s.Todos())
	assert.False(t, s.Loading())
	assert.ErrorIs(t, s.LoadErr(), errNetwork)
	assert.Contains(t, logs.String(), "fetch todos")
	assert.Equal(t, 1, st.count("list"), "no automatic retry")
}

func TestLoadReplacesInStoreOrder(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	var want []string
	for _, text := range []string{"one", "two", "three"} {
		td, err := st.Create(ctx, uid, text, false)
		require.NoError(t, err)
		want = append(want, td.ID)
	}
	s, _ := newSyncer(st)
	require.NoError(t, s.Load(ctx, uid))
	var got []string
	for _, td := range s.Todos() {
		got = append(got, td.ID)
	}
	assert.Equal(t, want, got)
	assert.NoError(t, s.LoadErr())
}

func TestAddFailureLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	s, logs := newSyncer(st)
	st.setFail("create", errNetwork)

	_, err := s.Add(ctx, uid, "Buy milk")
	assert.ErrorIs(t, err, errNetwork)
	assert.Zero(t, s.Len())
	assert.Contains(t, logs.String(), "add todo")
}

func TestMutationFailuresDoNotTouchLocalState(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	s, logs := newSyncer(st)
	td, err := s.Add(ctx, uid, "draft")
	require.NoError(t, err)
	before := s.Todos()

	st.setFail("update", errNetwork)
	st.setFail("delete", errNetwork)

	assert.ErrorIs(t, s.Toggle(ctx, uid, td.ID, td.Completed), errNetwork)
	assert.ErrorIs(t, s.Edit(ctx, uid, td.ID, "final"), errNetwork)
	assert.ErrorIs(t, s.Delete(ctx, uid, td.ID), errNetwork)

	assert.Equal(t, before, s.Todos())
	for _, msg := range []string{"toggle todo", "edit todo", "delete todo"} {
		assert.Contains(t, logs.String(), msg)
	}
	assert.Equal(t, 2, st.count("update"))
	assert.Equal(t, 1, st.count("delete"))
}

func TestEditNoOps(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	s, _ := newSyncer(st)
	td, err := s.Add(ctx, uid, "same")
	require.NoError(t, err)

	for _, text := range []string{"", "same"} {
		require.NoError(t, s.Edit(ctx, uid, td.ID, text))
	}
	assert.Zero(t, st.count("update"))
	assert.Equal(t, "same", s.Todos()[0].Text)

	assert.ErrorIs(t, s.Edit(ctx, uid, "missing", "x"), ErrUnknownTodo)
}

func TestWhitespaceTextIsStoredAsTyped(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	s, _ := newSyncer(st)

	td, err := s.Add(ctx, uid, "   ")
	require.NoError(t, err)
	assert.Equal(t, "   ", td.Text)
	assert.Equal(t, 1, st.count("create"))

	other, err := s.Add(ctx, uid, "x")
	require.NoError(t, err)
	require.NoError(t, s.Edit(ctx, uid, other.ID, "  "))
	assert.Equal(t, 1, st.count("update"))

	remote, err := st.Store.List(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, s.Todos(), remote)
	assert.Equal(t, "  ", remote[1].Text)
}

func TestEditWithPrompt(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	s, _ := newSyncer(st)
	td, err := s.Add(ctx, uid, "old")
	require.NoError(t, err)

	var seen string
	accept := PrompterFunc(func(_ context.Context, current string) (string, bool, error) {
		seen = current
		return "new", true, nil
	})
	cancel := PrompterFunc(func(context.Context, string) (string, bool, error) {
		return "ignored", false, nil
	})

	require.NoError(t, s.EditWithPrompt(ctx, uid, td.ID, cancel))
	assert.Zero(t, st.count("update"))

	require.NoError(t, s.EditWithPrompt(ctx, uid, td.ID, accept))
	assert.Equal(t, "old", seen)
	assert.Equal(t, "new", s.Todos()[0].Text)
	assert.Equal(t, 1, st.count("update"))
}

func TestNoSessionMakesNoRemoteCalls(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	s, _ := newSyncer(st)

	assert.ErrorIs(t, s.Load(ctx, ""), ErrNoSession)
	_, err := s.Add(ctx, "", "x")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, s.Toggle(ctx, "", "id", false), ErrNoSession)
	assert.ErrorIs(t, s.Edit(ctx, "", "id", "x"), ErrNoSession)
	assert.ErrorIs(t, s.Delete(ctx, "", "id"), ErrNoSession)

	_, err = s.Add(ctx, uid, "")
	assert.ErrorIs(t, err, ErrEmptyText)

	for _, op := range []string{"list", "create", "update", "delete"} {
		assert.Zero(t, st.count(op), op)
	}
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	s, _ := newSyncer(st)
	a, err := s.Add(ctx, uid, "a")
	require.NoError(t, err)
	b, err := s.Add(ctx, uid, "b")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, uid, a.ID))
	assert.Equal(t, []model.Todo{b}, s.Todos())

	require.NoError(t, s.Load(ctx, uid))
	for _, td := range s.Todos() {
		assert.NotEqual(t, a.ID, td.ID)
	}
	assert.Equal(t, 1, s.Len())
}

func TestResetDropsInFlightLoad(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	_, err := st.Store.Create(ctx, uid, "stale", false)
	require.NoError(t, err)
	st.block = make(chan struct{})
	s, _ := newSyncer(st)

	done := make(chan error)
	go func() { done <- s.Load(ctx, uid) }()
	require.Eventually(t, s.Loading, testTimeout, testTick)

	s.Reset()
	close(st.block)
	require.NoError(t, <-done)
	assert.Empty(t, s.Todos())
	assert.False(t, s.Loading())
}

func TestOverlappingLoadsKeepLoading(t *testing.T) {
	ctx := context.Background()
	st := newFlaky()
	st.block = make(chan struct{})
	s, _ := newSyncer(st)

	done := make(chan error)
	for i := 0; i < 2; i++ {
		go func() { done <- s.Load(ctx, uid) }()
	}
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.loads == 2
	}, testTimeout, testTick)

	st.block <- struct{}{}
	require.NoError(t, <-done)
	assert.True(t, s.Loading(), "second load still in flight")

	st.block <- struct{}{}
	require.NoError(t, <-done)
	assert.False(t, s.Loading())
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newSyncer(memstore.New())
	for _, text := range []string{"a", "b", "c"} {
		_, err := s.Add(ctx, uid, text)
		require.NoError(t, err)
	}
	first := s.Todos()[0]
	require.NoError(t, s.Toggle(ctx, uid, first.ID, first.Completed))
	done, pending := s.Stats()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, pending)
}

func TestAddThenLoadProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		text := rapid.StringMatching(`[A-Za-z0-9 ,.!?]{0,40}[A-Za-z0-9]`).Draw(rt, "text")
		s, _ := newSyncer(memstore.New())

		added, err := s.Add(ctx, uid, text)
		if err != nil {
			rt.Fatalf("Add(%q): %v", text, err)
		}
		if err := s.Load(ctx, uid); err != nil {
			rt.Fatalf("Load: %v", err)
		}
		for _, td := range s.Todos() {
			if td.ID == added.ID {
				if td.Text != text || td.Completed {
					rt.Fatalf("got %+v, want text %q and not completed", td, text)
				}
				return
			}
		}
		rt.Fatalf("added todo %s missing after Load", added.ID)
	})
}

func TestToggleIsInvolutive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		st := memstore.New()
		s, _ := newSyncer(st)
		start := rapid.Bool().Draw(rt, "start")
		td, err := st.Create(ctx, uid, "task", start)
		if err != nil {
			rt.Fatalf("Create: %v", err)
		}
		if err := s.Load(ctx, uid); err != nil {
			rt.Fatalf("Load: %v", err)
		}
		if err := s.Toggle(ctx, uid, td.ID, start); err != nil {
			rt.Fatalf("Toggle: %v", err)
		}
		if err := s.Toggle(ctx, uid, td.ID, s.Todos()[0].Completed); err != nil {
			rt.Fatalf("Toggle back: %v", err)
		}
		if got := s.Todos()[0].Completed; got != start {
			rt.Fatalf("local completed: got %v, want %v", got, start)
		}
		remote, _ := st.List(ctx, uid)
		if remote[0].Completed != start {
			rt.Fatalf("remote completed: got %v, want %v", remote[0].Completed, start)
		}
	})
}

func TestLocalMatchesRemoteProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		st := memstore.New()
		s, _ := newSyncer(st)
		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			todos := s.Todos()
			op := rapid.IntRange(0, 3).Draw(rt, "op")
			if len(todos) == 0 {
				op = 0
			}
			switch op {
			case 0:
				if _, err := s.Add(ctx, uid, rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "text")); err != nil {
					rt.Fatalf("Add: %v", err)
				}
			case 1:
				td := todos[rapid.IntRange(0, len(todos)-1).Draw(rt, "i")]
				if err := s.Toggle(ctx, uid, td.ID, td.Completed); err != nil {
					rt.Fatalf("Toggle: %v", err)
				}
			case 2:
				td := todos[rapid.IntRange(0, len(todos)-1).Draw(rt, "i")]
				if err := s.Edit(ctx, uid, td.ID, rapid.StringMatching(`[A-Z]{1,8}`).Draw(rt, "text")); err != nil {
					rt.Fatalf("Edit: %v", err)
				}
			case 3:
				td := todos[rapid.IntRange(0, len(todos)-1).Draw(rt, "i")]
				if err := s.Delete(ctx, uid, td.ID); err != nil {
					rt.Fatalf("Delete: %v", err)
				}
			}
			remote, err := st.List(ctx, uid)
			if err != nil {
				rt.Fatalf("List: %v", err)
			}
			local := s.Todos()
			if len(local) != len(remote) {
				rt.Fatalf("local %d todos, remote %d", len(local), len(remote))
			}
			for j := range local {
				if local[j] != remote[j] {
					rt.Fatalf("todo %d: local %+v, remote %+v", j, local[j], remote[j])
				}
			}
		}
	})
}
