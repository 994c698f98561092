// Package storetest is a conformance suite run against every store backend.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Backend is everything a full backend serves.
type Backend interface {
	store.Store
	store.ProfileStore
	store.AccountStore
}

// Run exercises a fresh backend from newBackend in each subtest.
func Run(t *testing.T, newBackend func(t *testing.T) Backend) {
	ctx := context.Background()

	t.Run("create then list keeps order", func(t *testing.T) {
		s := newBackend(t)
		var want []string
		for _, text := range []string{"Buy milk", "Walk dog", "Call mom"} {
			td, err := s.Create(ctx, "u1", text, false)
			require.NoError(t, err)
			require.NotEmpty(t, td.ID)
			assert.Equal(t, text, td.Text)
			assert.False(t, td.Completed)
			want = append(want, td.ID)
		}
		got, err := s.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i := range got {
			assert.Equal(t, want[i], got[i].ID)
		}
	})

	t.Run("collections are per user", func(t *testing.T) {
		s := newBackend(t)
		td, err := s.Create(ctx, "u1", "mine", false)
		require.NoError(t, err)
		other, err := s.List(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, other)
		assert.ErrorIs(t, s.Delete(ctx, "u2", td.ID), store.ErrNotFound)
		assert.ErrorIs(t, s.Update(ctx, "u2", td.ID, model.SetCompleted(true)), store.ErrNotFound)
	})

	t.Run("empty uid is rejected", func(t *testing.T) {
		s := newBackend(t)
		_, err := s.List(ctx, "")
		assert.ErrorIs(t, err, store.ErrPermission)
		_, err = s.Create(ctx, "", "x", false)
		assert.ErrorIs(t, err, store.ErrPermission)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		s := newBackend(t)
		_, err := s.Create(ctx, "u1", "", false)
		assert.ErrorIs(t, err, store.ErrInvalid)
	})

	t.Run("update applies patch", func(t *testing.T) {
		s := newBackend(t)
		td, err := s.Create(ctx, "u1", "draft", false)
		require.NoError(t, err)
		require.NoError(t, s.Update(ctx, "u1", td.ID, model.SetCompleted(true)))
		require.NoError(t, s.Update(ctx, "u1", td.ID, model.SetText("final")))
		got, err := s.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, model.Todo{ID: td.ID, Text: "final", Completed: true}, got[0])
		assert.ErrorIs(t, s.Update(ctx, "u1", td.ID, model.TodoPatch{}), store.ErrInvalid)
		assert.ErrorIs(t, s.Update(ctx, "u1", "missing", model.SetCompleted(true)), store.ErrNotFound)
	})

	t.Run("delete removes exactly one", func(t *testing.T) {
		s := newBackend(t)
		a, err := s.Create(ctx, "u1", "a", false)
		require.NoError(t, err)
		b, err := s.Create(ctx, "u1", "b", false)
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, "u1", a.ID))
		got, err := s.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, b.ID, got[0].ID)
		assert.ErrorIs(t, s.Delete(ctx, "u1", a.ID), store.ErrNotFound)
	})

	t.Run("profiles", func(t *testing.T) {
		s := newBackend(t)
		_, err := s.GetProfile(ctx, "u1")
		assert.ErrorIs(t, err, store.ErrNotFound)
		p := model.Profile{FullName: "Jo Lee", Email: "a@b.com"}
		require.NoError(t, s.PutProfile(ctx, "u1", p))
		got, err := s.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("accounts", func(t *testing.T) {
		s := newBackend(t)
		a := model.Account{UID: "u1", Email: "a@b.com", PasswordHash: "h"}
		require.NoError(t, s.CreateAccount(ctx, a))
		assert.ErrorIs(t, s.CreateAccount(ctx, model.Account{UID: "u2", Email: "a@b.com"}), store.ErrConflict)

		byEmail, err := s.AccountByEmail(ctx, "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", byEmail.UID)

		a.DisplayName = "Jo Lee"
		require.NoError(t, s.UpdateAccount(ctx, a))
		byUID, err := s.AccountByUID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Jo Lee", byUID.DisplayName)

		_, err = s.AccountByUID(ctx, "nobody")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, s.UpdateAccount(ctx, model.Account{UID: "nobody"}), store.ErrNotFound)
	})
}
