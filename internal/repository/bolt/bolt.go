// Package bolt implements the repositories on a single embedded bbolt file.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/repository"
)

// Bucket names
var (
	UsersBucket  = []byte("users")  // username -> user JSON
	VaultsBucket = []byte("vaults") // vault id -> vault JSON
)

func itemsBucket(kind model.ItemKind) []byte { return []byte("items_" + string(kind)) }

// Open opens or creates the database file and its buckets.
func Open(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{UsersBucket, VaultsBucket}
		for _, k := range model.Kinds {
			buckets = append(buckets, itemsBucket(k))
		}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewStore opens path and returns a repository.Store whose Close closes the file.
func NewStore(path string) (*repository.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &repository.Store{
		Users:  &UserRepo{db: db},
		Vaults: &VaultRepo{db: db},
		Items: repository.Items{
			LoginInfos:  NewItemRepo[model.LoginInfo](db, model.KindLoginInfo),
			Notes:       NewItemRepo[model.Note](db, model.KindNote),
			CreditCards: NewItemRepo[model.CreditCard](db, model.KindCreditCard),
			Passports:   NewItemRepo[model.Passport](db, model.KindPassport),
		},
		Close: db.Close,
	}, nil
}

// UserRepo stores users keyed by username.
type UserRepo struct{ db *bolt.DB }

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	buf, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(UsersBucket)
		if b.Get([]byte(u.Username)) != nil {
			return errs.ErrAlreadyExists
		}
		return b.Put([]byte(u.Username), buf)
	})
}

func (r *UserRepo) Save(_ context.Context, u *model.User) error {
	buf, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(UsersBucket)
		if b.Get([]byte(u.Username)) == nil {
			return errs.ErrNotFound
		}
		return b.Put([]byte(u.Username), buf)
	})
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(UsersBucket).Get([]byte(username))
		if raw == nil {
			return errs.ErrNotFound
		}
		return json.Unmarshal(raw, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete scans for the user id; users are keyed by name.
func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(UsersBucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var u model.User
			if err := json.Unmarshal(v, &u); err != nil {
				return err
			}
			if u.ID == id {
				return b.Delete(k)
			}
		}
		return errs.ErrNotFound
	})
}

// VaultRepo stores vault reference lists.
type VaultRepo struct{ db *bolt.DB }

func (r *VaultRepo) Save(_ context.Context, v *model.Vault) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(VaultsBucket).Put(v.ID.Bytes(), buf)
	})
}

func (r *VaultRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Vault, error) {
	var v model.Vault
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(VaultsBucket).Get(id.Bytes())
		if raw == nil {
			return errs.ErrNotFound
		}
		return json.Unmarshal(raw, &v)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VaultRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(VaultsBucket)
		if b.Get(id.Bytes()) == nil {
			return errs.ErrNotFound
		}
		return b.Delete(id.Bytes())
	})
}

// ItemRepo stores one kind of item in its own bucket.
type ItemRepo[T model.Record] struct {
	db     *bolt.DB
	bucket []byte
}

// NewItemRepo constructs an ItemRepo for kind.
func NewItemRepo[T model.Record](db *bolt.DB, kind model.ItemKind) *ItemRepo[T] {
	return &ItemRepo[T]{db: db, bucket: itemsBucket(kind)}
}

func (r *ItemRepo[T]) Save(_ context.Context, item T) error {
	buf, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).Put(item.RecordID().Bytes(), buf)
	})
}

func (r *ItemRepo[T]) Delete(_ context.Context, id uuid.UUID) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b.Get(id.Bytes()) == nil {
			return errs.ErrNotFound
		}
		return b.Delete(id.Bytes())
	})
}

func (r *ItemRepo[T]) FindAll(_ context.Context, ids []uuid.UUID) ([]T, error) {
	out := make([]T, 0, len(ids))
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		for _, id := range ids {
			raw := b.Get(id.Bytes())
			if raw == nil {
				continue
			}
			var it T
			if err := json.Unmarshal(raw, &it); err != nil {
				return fmt.Errorf("decode %s: %w", id, err)
			}
			out = append(out, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
