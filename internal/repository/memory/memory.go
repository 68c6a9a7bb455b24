// Package memory contains in-process implementations of repository interfaces.
package memory

import (
	"context"
	"sync"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// UserRepo is a map-backed UserRepository.
type UserRepo struct {
	mu     sync.RWMutex
	byName map[string]model.User
}

// NewUserRepo constructs an empty user repository.
func NewUserRepo() *UserRepo { return &UserRepo{byName: map[string]model.User{}} }

// Create inserts a new user.
func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; ok {
		return errs.ErrAlreadyExists
	}
	r.byName[u.Username] = cloneUser(u)
	return nil
}

// Save replaces an existing user.
func (r *UserRepo) Save(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; !ok {
		return errs.ErrNotFound
	}
	r.byName[u.Username] = cloneUser(u)
	return nil
}

// GetByUsername returns a copy of the stored user.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := cloneUser(&u)
	return &c, nil
}

// Delete removes a user by id.
func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, u := range r.byName {
		if u.ID == id {
			delete(r.byName, name)
			return nil
		}
	}
	return errs.ErrNotFound
}

func cloneUser(u *model.User) model.User {
	c := *u
	c.PwdHash = append([]byte(nil), u.PwdHash...)
	c.SaltAuth = append([]byte(nil), u.SaltAuth...)
	return c
}

// VaultRepo is a map-backed VaultRepository.
type VaultRepo struct {
	mu     sync.RWMutex
	vaults map[uuid.UUID]*model.Vault
}

// NewVaultRepo constructs an empty vault repository.
func NewVaultRepo() *VaultRepo { return &VaultRepo{vaults: map[uuid.UUID]*model.Vault{}} }

// Save stores a copy of v.
func (r *VaultRepo) Save(_ context.Context, v *model.Vault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vaults[v.ID] = v.Clone()
	return nil
}

// GetByID returns a copy of the stored vault.
func (r *VaultRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Vault, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vaults[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return v.Clone(), nil
}

// Delete removes a vault.
func (r *VaultRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vaults[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.vaults, id)
	return nil
}

// ItemRepo is a map-backed ItemRepository for one kind.
type ItemRepo[T model.Record] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]T
}

// NewItemRepo constructs an empty item repository.
func NewItemRepo[T model.Record]() *ItemRepo[T] {
	return &ItemRepo[T]{items: map[uuid.UUID]T{}}
}

// Save inserts or replaces an item.
func (r *ItemRepo[T]) Save(_ context.Context, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.RecordID()] = item
	return nil
}

// Delete removes an item.
func (r *ItemRepo[T]) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// FindAll returns the existing items among ids.
func (r *ItemRepo[T]) FindAll(_ context.Context, ids []uuid.UUID) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// Len reports the number of stored items.
func (r *ItemRepo[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Has reports whether an item with id is stored.
func (r *ItemRepo[T]) Has(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok
}

// NewStore builds a repository.Store backed by process memory.
func NewStore() *repository.Store {
	return &repository.Store{
		Users:  NewUserRepo(),
		Vaults: NewVaultRepo(),
		Items: repository.Items{
			LoginInfos:  NewItemRepo[model.LoginInfo](),
			Notes:       NewItemRepo[model.Note](),
			CreditCards: NewItemRepo[model.CreditCard](),
			Passports:   NewItemRepo[model.Passport](),
		},
		Close: func() error { return nil },
	}
}
