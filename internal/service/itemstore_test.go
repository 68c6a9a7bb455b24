package service

import (
	"context"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/repository/memory"
)

type noteFixture struct {
	store  *ItemStore[model.Note]
	items  *flakyItems[model.Note]
	vaults *flakyVaults
	vault  *model.Vault
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()
	f := &noteFixture{
		items:  &flakyItems[model.Note]{ItemRepo: memory.NewItemRepo[model.Note]()},
		vaults: &flakyVaults{VaultRepository: memory.NewVaultRepo()},
		vault:  &model.Vault{ID: uuid.Must(uuid.NewV4())},
	}
	require.NoError(t, f.vaults.Save(context.Background(), f.vault))
	f.store = NewItemStore[model.Note](model.KindNote, f.items, f.vaults, zaptest.NewLogger(t))
	return f
}

func plainNote(content string) Builder[model.Note] {
	return func(id uuid.UUID, title string) (model.Note, error) {
		return model.Note{ID: id, Title: title, Content: content}, nil
	}
}

func (f *noteFixture) stored(t *testing.T) *model.Vault {
	t.Helper()
	v, err := f.vaults.GetByID(context.Background(), f.vault.ID)
	require.NoError(t, err)
	return v
}

func TestItemStore_CreateNormalizesAndLinks(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	n, err := f.store.Create(ctx, f.vault, "  Shopping List ", plainNote("milk"))
	require.NoError(t, err)
	require.Equal(t, "shopping list", n.Title)
	require.True(t, f.items.Has(n.ID))
	require.Equal(t, []uuid.UUID{n.ID}, f.stored(t).Notes)
}

func TestItemStore_CreateValidatesTitle(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, f.vault, "   ", plainNote("x"))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = f.store.Create(ctx, f.vault, strings.Repeat("a", model.MaxTitleLen+1), plainNote("x"))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = f.store.Create(ctx, f.vault, strings.Repeat("a", model.MaxTitleLen), plainNote("x"))
	require.NoError(t, err)
	require.Equal(t, 1, f.items.Len())
}

func TestItemStore_CreateDuplicate(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, f.vault, "Gmail", plainNote("a"))
	require.NoError(t, err)
	_, err = f.store.Create(ctx, f.vault, "GMAIL ", plainNote("b"))
	require.ErrorIs(t, err, errs.ErrDuplicateTitle)
	require.Equal(t, 1, f.items.Len())
	require.Len(t, f.stored(t).Notes, 1)
}

func TestItemStore_CreateCompensatesFailedLink(t *testing.T) {
	f := newNoteFixture(t)
	f.vaults.saveErr = errBoom

	_, err := f.store.Create(context.Background(), f.vault, "orphan", plainNote("x"))
	require.ErrorIs(t, err, errBoom)
	require.NotErrorIs(t, err, errs.ErrPersistenceInconsistency)
	require.Zero(t, f.items.Len())
	require.Empty(t, f.vault.Notes)
}

func TestItemStore_CreateInconsistentWhenCleanupFails(t *testing.T) {
	f := newNoteFixture(t)
	f.vaults.saveErr = errBoom
	f.items.deleteErr = errBoom

	_, err := f.store.Create(context.Background(), f.vault, "orphan", plainNote("x"))
	require.ErrorIs(t, err, errs.ErrPersistenceInconsistency)
	require.Empty(t, f.vault.Notes)
}

func TestItemStore_CreateItemSaveFails(t *testing.T) {
	f := newNoteFixture(t)
	f.items.saveErr = errBoom

	_, err := f.store.Create(context.Background(), f.vault, "x", plainNote("x"))
	require.ErrorIs(t, err, errBoom)
	require.Empty(t, f.stored(t).Notes)
}

func TestItemStore_RemoveUnlinks(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	a, err := f.store.Create(ctx, f.vault, "a", plainNote("1"))
	require.NoError(t, err)
	b, err := f.store.Create(ctx, f.vault, "b", plainNote("2"))
	require.NoError(t, err)

	got, err := f.store.Remove(ctx, f.vault, "A")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.False(t, f.items.Has(a.ID))
	require.Equal(t, []uuid.UUID{b.ID}, f.stored(t).Notes)

	_, err = f.store.Remove(ctx, f.vault, "a")
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestItemStore_RemoveCompensatesFailedUnlink(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	n, err := f.store.Create(ctx, f.vault, "keep", plainNote("1"))
	require.NoError(t, err)

	f.vaults.saveErr = errBoom
	_, err = f.store.Remove(ctx, f.vault, "keep")
	require.ErrorIs(t, err, errBoom)
	require.True(t, f.items.Has(n.ID))
	require.Equal(t, []uuid.UUID{n.ID}, f.vault.Notes)
	require.Equal(t, []uuid.UUID{n.ID}, f.stored(t).Notes)
}

func TestItemStore_RemoveInconsistentWhenRestoreFails(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, f.vault, "keep", plainNote("1"))
	require.NoError(t, err)

	f.vaults.saveErr = errBoom
	f.items.saveErr = errBoom
	_, err = f.store.Remove(ctx, f.vault, "keep")
	require.ErrorIs(t, err, errs.ErrPersistenceInconsistency)
}

func TestItemStore_RemoveMissingRecord(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	n, err := f.store.Create(ctx, f.vault, "x", plainNote("1"))
	require.NoError(t, err)
	require.NoError(t, f.items.ItemRepo.Delete(ctx, n.ID))

	// titles resolve through stored records only
	_, err = f.store.Remove(ctx, f.vault, "x")
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestItemStore_Edit(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	a, err := f.store.Create(ctx, f.vault, "a", plainNote("1"))
	require.NoError(t, err)
	_, err = f.store.Create(ctx, f.vault, "b", plainNote("2"))
	require.NoError(t, err)

	setContent := func(c string) Applier[model.Note] {
		return func(cur model.Note, title string) (model.Note, error) {
			cur.Title, cur.Content = title, c
			return cur, nil
		}
	}

	taken := "B"
	_, err = f.store.Edit(ctx, f.vault, "a", &taken, setContent("x"))
	require.ErrorIs(t, err, errs.ErrDuplicateTitle)

	same := " A "
	got, err := f.store.Edit(ctx, f.vault, "a", &same, setContent("3"))
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, "a", got.Title)

	renamed := "c"
	got, err = f.store.Edit(ctx, f.vault, "a", &renamed, setContent("4"))
	require.NoError(t, err)
	require.Equal(t, "c", got.Title)

	list, err := f.store.List(ctx, f.vault)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "c", list[0].Title)
	require.Equal(t, "4", list[0].Content)

	_, err = f.store.Edit(ctx, f.vault, "a", nil, setContent("5"))
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestItemStore_ListKeepsVaultOrder(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	for _, title := range []string{"zeta", "alpha", "mid"} {
		_, err := f.store.Create(ctx, f.vault, title, plainNote(title))
		require.NoError(t, err)
	}
	list, err := f.store.List(ctx, f.vault)
	require.NoError(t, err)
	require.Equal(t, "zeta", list[0].Title)
	require.Equal(t, "alpha", list[1].Title)
	require.Equal(t, "mid", list[2].Title)
}
