package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/repository"
)

// Builder creates a new sealed record with the assigned id and normalized title.
type Builder[T model.Record] func(id uuid.UUID, title string) (T, error)

// Applier returns cur with the requested fields replaced and title set.
type Applier[T model.Record] func(cur T, title string) (T, error)

// Opener decrypts the sensitive fields of a record.
type Opener[T model.Record] func(sealed T) (T, error)

// ItemStore keeps one item kind consistent across its own collection and the
// vault reference list. Callers must hold the vault lock and pass a freshly loaded vault.
type ItemStore[T model.Record] struct {
	kind   model.ItemKind
	repo   repository.ItemRepository[T]
	vaults repository.VaultRepository
	log    *zap.Logger
}

// NewItemStore constructs an ItemStore for kind.
func NewItemStore[T model.Record](kind model.ItemKind, repo repository.ItemRepository[T], vaults repository.VaultRepository, log *zap.Logger) *ItemStore[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &ItemStore[T]{kind: kind, repo: repo, vaults: vaults, log: log.With(zap.String("kind", string(kind)))}
}

// validateTitle normalizes a title and enforces presence and length.
func validateTitle(raw string) (string, error) {
	t := model.NormalizeTitle(raw)
	if t == "" {
		return "", fmt.Errorf("title cannot be empty: %w", errs.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(t) > model.MaxTitleLen {
		return "", fmt.Errorf("title longer than %d characters: %w", model.MaxTitleLen, errs.ErrInvalidArgument)
	}
	return t, nil
}

// List returns the items of this kind in vault order.
// Lookup is a linear scan of the vault list, not a secondary index.
func (s *ItemStore[T]) List(ctx context.Context, v *model.Vault) ([]T, error) {
	refs := *v.Refs(s.kind)
	found, err := s.repo.FindAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("%s: load: %w", s.kind, err)
	}
	byID := make(map[uuid.UUID]T, len(found))
	for _, it := range found {
		byID[it.RecordID()] = it
	}
	out := make([]T, 0, len(refs))
	for _, id := range refs {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *ItemStore[T]) find(ctx context.Context, v *model.Vault, title string) (T, []T, error) {
	var zero T
	items, err := s.List(ctx, v)
	if err != nil {
		return zero, nil, err
	}
	norm := model.NormalizeTitle(title)
	if norm == "" {
		return zero, nil, fmt.Errorf("title cannot be empty: %w", errs.ErrInvalidArgument)
	}
	for _, it := range items {
		if it.RecordTitle() == norm {
			return it, items, nil
		}
	}
	return zero, items, fmt.Errorf("%s %q: %w", s.kind, norm, errs.ErrItemNotFound)
}

func (s *ItemStore[T]) checkUnique(items []T, title string, self uuid.UUID) error {
	for _, it := range items {
		if it.RecordID() != self && it.RecordTitle() == title {
			return fmt.Errorf("%s %q: %w", s.kind, title, errs.ErrDuplicateTitle)
		}
	}
	return nil
}

// Create persists a new record, then links it into the vault.
// A failed link deletes the orphan record; if that also fails the result is
// errs.ErrPersistenceInconsistency.
func (s *ItemStore[T]) Create(ctx context.Context, v *model.Vault, title string, build Builder[T]) (T, error) {
	var zero T
	norm, err := validateTitle(title)
	if err != nil {
		return zero, err
	}
	items, err := s.List(ctx, v)
	if err != nil {
		return zero, err
	}
	if err := s.checkUnique(items, norm, uuid.Nil); err != nil {
		return zero, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return zero, err
	}
	item, err := build(id, norm)
	if err != nil {
		return zero, err
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return zero, fmt.Errorf("%s: save item: %w", s.kind, err)
	}
	refs := v.Refs(s.kind)
	*refs = append(*refs, id)
	if err := s.vaults.Save(ctx, v); err != nil {
		*refs = (*refs)[:len(*refs)-1]
		if derr := s.repo.Delete(ctx, id); derr != nil && !errors.Is(derr, errs.ErrNotFound) {
			s.log.Error("orphan cleanup failed",
				zap.Stringer("vault", v.ID), zap.Stringer("item", id),
				zap.NamedError("link_err", err), zap.NamedError("cleanup_err", derr))
			return zero, fmt.Errorf("%s %s: link failed (%v), cleanup failed (%v): %w",
				s.kind, id, err, derr, errs.ErrPersistenceInconsistency)
		}
		s.log.Warn("create rolled back", zap.Stringer("vault", v.ID), zap.Error(err))
		return zero, fmt.Errorf("%s: save vault: %w", s.kind, err)
	}
	return item, nil
}

// Edit applies a partial update to the item titled title.
// The vault only stores ids, so its list is untouched.
func (s *ItemStore[T]) Edit(ctx context.Context, v *model.Vault, title string, newTitle *string, apply Applier[T]) (T, error) {
	var zero T
	cur, items, err := s.find(ctx, v, title)
	if err != nil {
		return zero, err
	}
	target := cur.RecordTitle()
	if newTitle != nil {
		if target, err = validateTitle(*newTitle); err != nil {
			return zero, err
		}
		if err := s.checkUnique(items, target, cur.RecordID()); err != nil {
			return zero, err
		}
	}
	updated, err := apply(cur, target)
	if err != nil {
		return zero, err
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return zero, fmt.Errorf("%s: save item: %w", s.kind, err)
	}
	return updated, nil
}

// Remove deletes the record, then unlinks it from the vault.
// A failed unlink re-saves the record; if that also fails the result is
// errs.ErrPersistenceInconsistency.
func (s *ItemStore[T]) Remove(ctx context.Context, v *model.Vault, title string) (T, error) {
	var zero T
	cur, _, err := s.find(ctx, v, title)
	if err != nil {
		return zero, err
	}
	id := cur.RecordID()

	// A record already missing only leaves a dangling ref; unlinking heals it.
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return zero, fmt.Errorf("%s: delete item: %w", s.kind, err)
	}

	refs := v.Refs(s.kind)
	prev := append([]uuid.UUID(nil), (*refs)...)
	kept := (*refs)[:0:0]
	for _, ref := range prev {
		if ref != id {
			kept = append(kept, ref)
		}
	}
	*refs = kept
	if err := s.vaults.Save(ctx, v); err != nil {
		*refs = prev
		if rerr := s.repo.Save(ctx, cur); rerr != nil {
			s.log.Error("restore after failed unlink failed",
				zap.Stringer("vault", v.ID), zap.Stringer("item", id),
				zap.NamedError("unlink_err", err), zap.NamedError("restore_err", rerr))
			return zero, fmt.Errorf("%s %s: unlink failed (%v), restore failed (%v): %w",
				s.kind, id, err, rerr, errs.ErrPersistenceInconsistency)
		}
		s.log.Warn("delete rolled back", zap.Stringer("vault", v.ID), zap.Error(err))
		return zero, fmt.Errorf("%s: save vault: %w", s.kind, err)
	}
	return cur, nil
}

// View returns the item titled title with sensitive fields decrypted.
func (s *ItemStore[T]) View(ctx context.Context, v *model.Vault, title string, open Opener[T]) (T, error) {
	var zero T
	cur, _, err := s.find(ctx, v, title)
	if err != nil {
		return zero, err
	}
	out, err := open(cur)
	if err != nil {
		return zero, fmt.Errorf("%s %q: %w", s.kind, cur.RecordTitle(), err)
	}
	return out, nil
}
