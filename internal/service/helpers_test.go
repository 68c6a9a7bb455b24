package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/passbox/internal/crypto/cipherbox"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/repository"
	"github.com/and161185/passbox/internal/repository/memory"
)

var errBoom = errors.New("boom")

// fixedGen produces predictable passcodes.
type fixedGen struct{}

func (fixedGen) Password(n int) (string, error) { return strings.Repeat("p", n), nil }
func (fixedGen) PIN(n int) (string, error)      { return strings.Repeat("7", n), nil }

type flakyVaults struct {
	repository.VaultRepository
	saveErr error
}

func (f *flakyVaults) Save(ctx context.Context, v *model.Vault) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.VaultRepository.Save(ctx, v)
}

type flakyItems[T model.Record] struct {
	*memory.ItemRepo[T]
	saveErr   error
	deleteErr error
}

func (f *flakyItems[T]) Save(ctx context.Context, item T) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.ItemRepo.Save(ctx, item)
}

func (f *flakyItems[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.ItemRepo.Delete(ctx, id)
}

func newBox(t *testing.T) *cipherbox.Box {
	t.Helper()
	key, err := cipherbox.GenerateKey()
	require.NoError(t, err)
	box, err := cipherbox.New(key)
	require.NoError(t, err)
	return box
}

func newTestService(t *testing.T) (*VaultServiceImpl, *repository.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewVaultService(store, newBox(t), fixedGen{}, nil, zaptest.NewLogger(t))
	return svc, store
}

// signUp registers name and logs in, leaving the account unlocked.
func signUp(t *testing.T, svc *VaultServiceImpl, name string) model.AccountResponse {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, model.SignUpRequest{
		Username: name, Password: name + "-secret-pw", ConfirmPassword: name + "-secret-pw",
	})
	require.NoError(t, err)
	acc, err := svc.Login(ctx, model.LoginRequest{Username: name, Password: name + "-secret-pw"})
	require.NoError(t, err)
	return acc
}

func notes(store *repository.Store) *memory.ItemRepo[model.Note] {
	return store.Items.Notes.(*memory.ItemRepo[model.Note])
}
