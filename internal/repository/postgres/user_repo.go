package postgres

import (
	"context"
	"errors"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, pwd_hash, salt_auth, is_locked, vault_id, registered_on)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.PwdHash, u.SaltAuth, u.IsLocked, u.VaultID, u.RegisteredOn)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Save updates the mutable columns of an existing user.
func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	const q = `
UPDATE users SET pwd_hash=$2, salt_auth=$3, is_locked=$4
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, u.ID, u.PwdHash, u.SaltAuth, u.IsLocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, is_locked, vault_id, registered_on
FROM users WHERE username=$1`
	row := r.db.Pool.QueryRow(ctx, q, username)
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PwdHash, &u.SaltAuth, &u.IsLocked, &u.VaultID, &u.RegisteredOn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
