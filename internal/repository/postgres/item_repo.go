package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ItemRepo implements ItemRepository[T] over the shared items table,
// partitioned by kind. The record is stored as a JSONB body.
type ItemRepo[T model.Record] struct {
	db   *DB
	kind model.ItemKind
}

// NewItemRepo constructs an item repository for one kind.
func NewItemRepo[T model.Record](db *DB, kind model.ItemKind) *ItemRepo[T] {
	return &ItemRepo[T]{db: db, kind: kind}
}

// Save upserts an item row.
func (r *ItemRepo[T]) Save(ctx context.Context, item T) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", r.kind, err)
	}
	const q = `
INSERT INTO items (id, vault_id, kind, title, body)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET title=EXCLUDED.title, body=EXCLUDED.body, updated_at=now()`
	_, err = r.db.Pool.Exec(ctx, q, item.RecordID(), item.RecordVaultID(), string(r.kind), item.RecordTitle(), body)
	return err
}

// Delete removes an item row of this kind.
func (r *ItemRepo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM items WHERE id=$1 AND kind=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, string(r.kind))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindAll selects the items of this kind whose ids are in ids.
func (r *ItemRepo[T]) FindAll(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	const q = `
SELECT body FROM items
WHERE kind=$1 AND id::text = ANY($2)`
	rows, err := r.db.Pool.Query(ctx, q, string(r.kind), idStrings(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0, len(ids))
	for rows.Next() {
		var body []byte
		if err = rows.Scan(&body); err != nil {
			return nil, err
		}
		var it T
		if err = json.Unmarshal(body, &it); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", r.kind, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
