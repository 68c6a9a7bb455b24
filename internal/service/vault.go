package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/repository"
)

// VaultAggregate serializes every mutation of one vault and delegates the
// per-kind work to its ItemStores. Each operation reloads the vault under the lock.
type VaultAggregate struct {
	vaults repository.VaultRepository
	locks  *vaultLocks

	LoginInfos  *ItemStore[model.LoginInfo]
	Notes       *ItemStore[model.Note]
	CreditCards *ItemStore[model.CreditCard]
	Passports   *ItemStore[model.Passport]
}

// NewVaultAggregate wires one ItemStore per kind over the store's repositories.
func NewVaultAggregate(store *repository.Store, log *zap.Logger) *VaultAggregate {
	if log == nil {
		log = zap.NewNop()
	}
	return &VaultAggregate{
		vaults:      store.Vaults,
		locks:       newVaultLocks(),
		LoginInfos:  NewItemStore(model.KindLoginInfo, store.Items.LoginInfos, store.Vaults, log),
		Notes:       NewItemStore(model.KindNote, store.Items.Notes, store.Vaults, log),
		CreditCards: NewItemStore(model.KindCreditCard, store.Items.CreditCards, store.Vaults, log),
		Passports:   NewItemStore(model.KindPassport, store.Items.Passports, store.Vaults, log),
	}
}

// withVault runs fn with the vault exclusively held and freshly loaded.
func (a *VaultAggregate) withVault(ctx context.Context, id uuid.UUID, fn func(v *model.Vault) error) error {
	unlock := a.locks.Lock(id)
	defer unlock()

	v, err := a.vaults.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("vault %s: %w", id, errs.ErrPersistenceInconsistency)
	}
	if err != nil {
		return err
	}
	return fn(v)
}

func add[T model.Record](ctx context.Context, a *VaultAggregate, s *ItemStore[T], vaultID uuid.UUID, title string, build Builder[T]) (out T, err error) {
	err = a.withVault(ctx, vaultID, func(v *model.Vault) error {
		out, err = s.Create(ctx, v, title, build)
		return err
	})
	return out, err
}

func edit[T model.Record](ctx context.Context, a *VaultAggregate, s *ItemStore[T], vaultID uuid.UUID, title string, newTitle *string, apply Applier[T]) (out T, err error) {
	err = a.withVault(ctx, vaultID, func(v *model.Vault) error {
		out, err = s.Edit(ctx, v, title, newTitle, apply)
		return err
	})
	return out, err
}

func remove[T model.Record](ctx context.Context, a *VaultAggregate, s *ItemStore[T], vaultID uuid.UUID, title string) (out T, err error) {
	err = a.withVault(ctx, vaultID, func(v *model.Vault) error {
		out, err = s.Remove(ctx, v, title)
		return err
	})
	return out, err
}

func view[T model.Record](ctx context.Context, a *VaultAggregate, s *ItemStore[T], vaultID uuid.UUID, title string, open Opener[T]) (out T, err error) {
	err = a.withVault(ctx, vaultID, func(v *model.Vault) error {
		out, err = s.View(ctx, v, title, open)
		return err
	})
	return out, err
}

func list[T model.Record](ctx context.Context, a *VaultAggregate, s *ItemStore[T], vaultID uuid.UUID) (out []model.ItemRef, err error) {
	err = a.withVault(ctx, vaultID, func(v *model.Vault) error {
		items, err := s.List(ctx, v)
		if err != nil {
			return err
		}
		out = make([]model.ItemRef, 0, len(items))
		for _, it := range items {
			out = append(out, refOf(s.kind, it))
		}
		return nil
	})
	return out, err
}

func refOf[T model.Record](kind model.ItemKind, it T) model.ItemRef {
	return model.ItemRef{ID: it.RecordID(), Kind: kind, Title: it.RecordTitle()}
}
