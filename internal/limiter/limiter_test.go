package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newPG(t *testing.T, maxFails int) (*PG, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPG(mock, 15*time.Minute, maxFails, 10*time.Minute), mock
}

func TestPG_Allow(t *testing.T) {
	l, mock := newPG(t, 5)
	defer mock.Close()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	mock.ExpectQuery(`SELECT blocked_until FROM auth_limiter WHERE username=\$1`).
		WithArgs("u").WillReturnError(pgx.ErrNoRows)
	ok, dur, err := l.Allow(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, dur)

	mock.ExpectQuery(`SELECT blocked_until`).
		WithArgs("u").
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(3 * time.Minute)))
	ok, dur, err = l.Allow(ctx, "u")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 3*time.Minute, dur)

	mock.ExpectQuery(`SELECT blocked_until`).
		WithArgs("u").
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(-time.Minute)))
	ok, _, err = l.Allow(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery(`SELECT blocked_until`).
		WithArgs("u").WillReturnError(errors.New("db boom"))
	ok, _, err = l.Allow(ctx, "u")
	require.Error(t, err)
	require.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_Success(t *testing.T) {
	l, mock := newPG(t, 5)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO auth_limiter`).
		WithArgs("u").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, l.Success(context.Background(), "u"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_Failure_BlocksAtThreshold(t *testing.T) {
	l, mock := newPG(t, 3)
	defer mock.Close()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("u", 15*time.Minute).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(2))
	blocked, dur, err := l.Failure(ctx, "u")
	require.NoError(t, err)
	require.False(t, blocked)
	require.Zero(t, dur)

	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("u", 15*time.Minute).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(3))
	mock.ExpectExec(`UPDATE auth_limiter SET blocked_until=\$2 WHERE username=\$1`).
		WithArgs("u", now.Add(10*time.Minute)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	blocked, dur, err = l.Failure(ctx, "u")
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, 10*time.Minute, dur)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemory_WindowAndBlock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute, 2, 5*time.Minute)
	m.now = func() time.Time { return now }

	blocked, _, _ := m.Failure(ctx, "u")
	require.False(t, blocked)

	// outside the window the counter restarts
	now = now.Add(2 * time.Minute)
	blocked, _, _ = m.Failure(ctx, "u")
	require.False(t, blocked)

	blocked, dur, _ := m.Failure(ctx, "u")
	require.True(t, blocked)
	require.Equal(t, 5*time.Minute, dur)

	ok, retry, _ := m.Allow(ctx, "u")
	require.False(t, ok)
	require.Equal(t, 5*time.Minute, retry)

	ok, _, _ = m.Allow(ctx, "other")
	require.True(t, ok)

	now = now.Add(6 * time.Minute)
	ok, _, _ = m.Allow(ctx, "u")
	require.True(t, ok)

	require.NoError(t, m.Success(ctx, "u"))
	blocked, _, _ = m.Failure(ctx, "u")
	require.False(t, blocked)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var l Limiter = Nop{}
	ok, _, err := l.Allow(context.Background(), "x")
	require.NoError(t, err)
	require.True(t, ok)
	blocked, _, err := l.Failure(context.Background(), "x")
	require.NoError(t, err)
	require.False(t, blocked)
}
