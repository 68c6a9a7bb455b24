package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// VaultRepo implements VaultRepository using PostgreSQL.
// Reference lists are TEXT[] columns; array order is insertion order.
type VaultRepo struct{ db *DB }

// NewVaultRepo constructs a vault repository.
func NewVaultRepo(db *DB) *VaultRepo { return &VaultRepo{db: db} }

// Save upserts the vault row with all four reference lists.
func (r *VaultRepo) Save(ctx context.Context, v *model.Vault) error {
	const q = `
INSERT INTO vaults (id, login_infos, notes, credit_cards, passports)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET login_infos=EXCLUDED.login_infos, notes=EXCLUDED.notes,
    credit_cards=EXCLUDED.credit_cards, passports=EXCLUDED.passports, updated_at=now()`
	_, err := r.db.Pool.Exec(ctx, q, v.ID,
		idStrings(v.LoginInfos), idStrings(v.Notes), idStrings(v.CreditCards), idStrings(v.Passports))
	return err
}

// GetByID selects a vault by id.
func (r *VaultRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Vault, error) {
	const q = `
SELECT login_infos, notes, credit_cards, passports
FROM vaults WHERE id=$1`
	var logins, notes, cards, passports []string
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&logins, &notes, &cards, &passports); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	v := &model.Vault{ID: id}
	for _, col := range []struct {
		dst *[]uuid.UUID
		src []string
	}{
		{&v.LoginInfos, logins},
		{&v.Notes, notes},
		{&v.CreditCards, cards},
		{&v.Passports, passports},
	} {
		ids, err := parseIDs(col.src)
		if err != nil {
			return nil, fmt.Errorf("vault %s: %w", id, err)
		}
		*col.dst = ids
	}
	return v, nil
}

// Delete removes a vault row.
func (r *VaultRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM vaults WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
