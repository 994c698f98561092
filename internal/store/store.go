// Package store defines the per-user todo collection every backend serves.
//
// Records live under a user's identifier and are addressed by an id the
// backend assigns. Backends enumerate records in creation order.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/idilsaglam/tada/internal/model"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when the caller may not touch the collection.
	ErrPermission = errors.New("permission denied")
	// ErrInvalid is returned for malformed writes (empty text, empty patch).
	ErrInvalid = errors.New("invalid argument")
	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
	// ErrConflict is returned when creating a record whose key is taken.
	ErrConflict = errors.New("already exists")
)

// Store is the remote todo collection, scoped per user.
type Store interface {
	List(ctx context.Context, uid string) ([]model.Todo, error)
	Create(ctx context.Context, uid, text string, completed bool) (model.Todo, error)
	Update(ctx context.Context, uid, id string, patch model.TodoPatch) error
	Delete(ctx context.Context, uid, id string) error
}

// ProfileStore holds the users/{uid} profile documents.
type ProfileStore interface {
	PutProfile(ctx context.Context, uid string, p model.Profile) error
	GetProfile(ctx context.Context, uid string) (model.Profile, error)
}

// AccountStore holds credential records, keyed by email and by uid.
type AccountStore interface {
	CreateAccount(ctx context.Context, a model.Account) error
	AccountByEmail(ctx context.Context, email string) (model.Account, error)
	AccountByUID(ctx context.Context, uid string) (model.Account, error)
	UpdateAccount(ctx context.Context, a model.Account) error
}

// CheckUID rejects an empty owner.
func CheckUID(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return ErrPermission
	}
	return nil
}

// CheckCreate validates a create call.
func CheckCreate(uid, text string) error {
	if err := CheckUID(uid); err != nil {
		return err
	}
	if text == "" {
		return ErrInvalid
	}
	return nil
}

// CheckPatch validates an update call.
func CheckPatch(uid, id string, patch model.TodoPatch) error {
	if err := CheckUID(uid); err != nil {
		return err
	}
	if id == "" {
		return ErrNotFound
	}
	if patch.Empty() || (patch.Text != nil && *patch.Text == "") {
		return ErrInvalid
	}
	return nil
}
