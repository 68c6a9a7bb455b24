// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/passbox/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository stores accounts keyed by lowercase username.
type UserRepository interface {
	// Create inserts a new user; a taken username yields errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// Save updates an existing user (lock state).
	Save(ctx context.Context, u *model.User) error
	// GetByUsername loads a user; errs.ErrNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Delete removes a user by id.
	Delete(ctx context.Context, id uuid.UUID) error
}

// VaultRepository stores vault reference lists.
type VaultRepository interface {
	// Save inserts or replaces the vault.
	Save(ctx context.Context, v *model.Vault) error
	// GetByID loads a vault; errs.ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vault, error)
	// Delete removes a vault by id.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepository stores the records of one item kind.
type ItemRepository[T model.Record] interface {
	// Save inserts or replaces an item record.
	Save(ctx context.Context, item T) error
	// Delete removes an item record; errs.ErrNotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
	// FindAll returns the records with the given ids that exist, in any order.
	FindAll(ctx context.Context, ids []uuid.UUID) ([]T, error)
}

// Items groups the four item collections.
type Items struct {
	LoginInfos  ItemRepository[model.LoginInfo]
	Notes       ItemRepository[model.Note]
	CreditCards ItemRepository[model.CreditCard]
	Passports   ItemRepository[model.Passport]
}

// Store bundles every collaborator a backend provides.
type Store struct {
	Users  UserRepository
	Vaults VaultRepository
	Items  Items
	Close  func() error
}
