package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/limiter"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/repository/memory"
)

func TestAccountGate_LoginLogout(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	signUp(t, svc, "carol")
	gate := NewAccountGate(store.Users, nil, zaptest.NewLogger(t))

	u, err := gate.Logout(ctx, "Carol")
	require.NoError(t, err)
	require.True(t, u.IsLocked)

	// second logout is a no-op
	u, err = gate.Logout(ctx, "carol")
	require.NoError(t, err)
	require.True(t, u.IsLocked)

	_, err = gate.CheckUnlocked(ctx, "carol")
	require.ErrorIs(t, err, errs.ErrAccountLocked)

	_, err = gate.Login(ctx, "carol", "wrong-password")
	require.ErrorIs(t, err, errs.ErrInvalidPassword)
	_, err = gate.CheckUnlocked(ctx, "carol")
	require.ErrorIs(t, err, errs.ErrAccountLocked)

	u, err = gate.Login(ctx, "CAROL", "carol-secret-pw")
	require.NoError(t, err)
	require.False(t, u.IsLocked)

	_, err = gate.CheckUnlocked(ctx, "carol")
	require.NoError(t, err)
}

func TestAccountGate_UnknownUser(t *testing.T) {
	gate := NewAccountGate(memory.NewUserRepo(), nil, nil)
	ctx := context.Background()

	_, err := gate.Login(ctx, "ghost", "whatever-pw")
	require.ErrorIs(t, err, errs.ErrUserNotFound)
	_, err = gate.Logout(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrUserNotFound)
	_, err = gate.CheckUnlocked(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrUserNotFound)
	_, err = gate.CheckUnlocked(ctx, "")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestAccountGate_Confirm(t *testing.T) {
	svc, store := newTestService(t)
	signUp(t, svc, "dave")
	u, err := store.Users.GetByUsername(context.Background(), "dave")
	require.NoError(t, err)

	gate := NewAccountGate(store.Users, nil, nil)
	require.ErrorIs(t, gate.Confirm(u, ""), errs.ErrInvalidArgument)
	require.ErrorIs(t, gate.Confirm(u, "nope-nope-nope"), errs.ErrInvalidPassword)
	require.NoError(t, gate.Confirm(u, "dave-secret-pw"))
}

func TestAccountGate_RateLimited(t *testing.T) {
	svc, store := newTestService(t)
	signUp(t, svc, "erin")
	lim := limiter.NewMemory(time.Minute, 2, time.Hour)
	gate := NewAccountGate(store.Users, lim, zaptest.NewLogger(t))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := gate.Login(ctx, "erin", "bad-password")
		require.ErrorIs(t, err, errs.ErrInvalidPassword)
	}
	_, err := gate.Login(ctx, "erin", "erin-secret-pw")
	require.ErrorIs(t, err, errs.ErrRateLimited)

	u, err := store.Users.GetByUsername(ctx, model.NormalizeUsername("erin"))
	require.NoError(t, err)
	require.False(t, u.IsLocked)
}
