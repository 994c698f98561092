// Package boltstore persists todos, profiles and accounts in a bbolt file.
//
// Bucket layout:
//
//	accounts      email -> Account
//	account_uids  uid   -> email
//	users         uid   -> Profile
//	todos         uid   -> nested bucket (id -> Todo)
//
// Todo ids are time-ordered, so cursor order is creation order.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

var (
	bucketAccounts    = []byte("accounts")
	bucketAccountUIDs = []byte("account_uids")
	bucketUsers       = []byte("users")
	bucketTodos       = []byte("todos")
)

// Store wraps an open bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and ensures the top-level buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketAccounts, bucketAccountUIDs, bucketUsers, bucketTodos} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) List(_ context.Context, uid string) ([]model.Todo, error) {
	if err := store.CheckUID(uid); err != nil {
		return nil, err
	}
	out := []model.Todo{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTodos).Bucket([]byte(uid))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var t model.Todo
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("decode todo: %w", err)
			}
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, uid, text string, completed bool) (model.Todo, error) {
	if err := store.CheckCreate(uid, text); err != nil {
		return model.Todo{}, err
	}
	t := model.Todo{ID: store.NewID(), Text: text, Completed: completed}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(bucketTodos).CreateBucketIfNotExists([]byte(uid))
		if err != nil {
			return err
		}
		return putJSON(b, []byte(t.ID), t)
	})
	if err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

func (s *Store) Update(_ context.Context, uid, id string, patch model.TodoPatch) error {
	if err := store.CheckPatch(uid, id, patch); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTodos).Bucket([]byte(uid))
		if b == nil {
			return store.ErrNotFound
		}
		var t model.Todo
		if err := getJSON(b, []byte(id), &t); err != nil {
			return err
		}
		return putJSON(b, []byte(id), patch.Apply(t))
	})
}

func (s *Store) Delete(_ context.Context, uid, id string) error {
	if err := store.CheckUID(uid); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTodos).Bucket([]byte(uid))
		if b == nil || b.Get([]byte(id)) == nil {
			return store.ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (s *Store) PutProfile(_ context.Context, uid string, p model.Profile) error {
	if err := store.CheckUID(uid); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketUsers), []byte(uid), p)
	})
}

func (s *Store) GetProfile(_ context.Context, uid string) (model.Profile, error) {
	if err := store.CheckUID(uid); err != nil {
		return model.Profile{}, err
	}
	var p model.Profile
	err := s.db.View(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(bucketUsers), []byte(uid), &p)
	})
	return p, err
}

func (s *Store) CreateAccount(_ context.Context, a model.Account) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		accts, uids := tx.Bucket(bucketAccounts), tx.Bucket(bucketAccountUIDs)
		if accts.Get([]byte(a.Email)) != nil || uids.Get([]byte(a.UID)) != nil {
			return store.ErrConflict
		}
		if err := uids.Put([]byte(a.UID), []byte(a.Email)); err != nil {
			return err
		}
		return putJSON(accts, []byte(a.Email), a)
	})
}

func (s *Store) AccountByEmail(_ context.Context, email string) (model.Account, error) {
	var a model.Account
	err := s.db.View(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(bucketAccounts), []byte(email), &a)
	})
	return a, err
}

func (s *Store) AccountByUID(_ context.Context, uid string) (model.Account, error) {
	var a model.Account
	err := s.db.View(func(tx *bolt.Tx) error {
		email := tx.Bucket(bucketAccountUIDs).Get([]byte(uid))
		if email == nil {
			return store.ErrNotFound
		}
		return getJSON(tx.Bucket(bucketAccounts), email, &a)
	})
	return a, err
}

func (s *Store) UpdateAccount(_ context.Context, a model.Account) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		email := tx.Bucket(bucketAccountUIDs).Get([]byte(a.UID))
		if email == nil {
			return store.ErrNotFound
		}
		// the email key is immutable
		a.Email = string(email)
		return putJSON(tx.Bucket(bucketAccounts), email, a)
	})
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return b.Put(key, buf)
}

func getJSON(b *bolt.Bucket, key []byte, v any) error {
	buf := b.Get(key)
	if buf == nil {
		return store.ErrNotFound
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}
