package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/passbox/internal/crypto"
	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/limiter"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/repository"
)

// dummySalt is hashed against when the username is unknown so both
// login failure paths cost one Argon2id derivation.
var dummySalt = make([]byte, 16)

// AccountGate owns the per-account lock flag and master password checks.
type AccountGate struct {
	users repository.UserRepository
	lim   limiter.Limiter
	log   *zap.Logger
}

// NewAccountGate constructs an AccountGate. A nil limiter never blocks.
func NewAccountGate(users repository.UserRepository, lim limiter.Limiter, log *zap.Logger) *AccountGate {
	if lim == nil {
		lim = limiter.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountGate{users: users, lim: lim, log: log}
}

func (g *AccountGate) lookup(ctx context.Context, username string) (*model.User, error) {
	name := model.NormalizeUsername(username)
	if name == "" {
		return nil, fmt.Errorf("username cannot be empty: %w", errs.ErrInvalidArgument)
	}
	u, err := g.users.GetByUsername(ctx, name)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%q: %w", name, errs.ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the master password and clears the lock flag.
func (g *AccountGate) Login(ctx context.Context, username, password string) (*model.User, error) {
	name := model.NormalizeUsername(username)
	allowed, retry, err := g.lim.Allow(ctx, name)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("retry in %s: %w", retry.Round(time.Second), errs.ErrRateLimited)
	}

	u, err := g.lookup(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			_ = pkgcrypto.HashPassword([]byte(password), dummySalt)
			g.fail(ctx, name)
		}
		return nil, err
	}
	if !pkgcrypto.VerifyPassword(password, u.SaltAuth, u.PwdHash) {
		g.fail(ctx, name)
		return nil, errs.ErrInvalidPassword
	}

	if u.IsLocked {
		u.IsLocked = false
		if err := g.users.Save(ctx, u); err != nil {
			return nil, err
		}
	}
	if err := g.lim.Success(ctx, name); err != nil {
		g.log.Warn("limiter reset failed", zap.String("username", name), zap.Error(err))
	}
	return u, nil
}

func (g *AccountGate) fail(ctx context.Context, name string) {
	blocked, d, err := g.lim.Failure(ctx, name)
	if err != nil {
		g.log.Warn("limiter failure record failed", zap.String("username", name), zap.Error(err))
		return
	}
	if blocked {
		g.log.Info("login blocked", zap.String("username", name), zap.Duration("for", d))
	}
}

// Logout sets the lock flag. Logging out a locked account is a no-op.
func (g *AccountGate) Logout(ctx context.Context, username string) (*model.User, error) {
	u, err := g.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.IsLocked {
		return u, nil
	}
	u.IsLocked = true
	if err := g.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CheckUnlocked returns the user when its vault may be touched.
func (g *AccountGate) CheckUnlocked(ctx context.Context, username string) (*model.User, error) {
	u, err := g.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.IsLocked {
		return nil, fmt.Errorf("%q: %w", u.Username, errs.ErrAccountLocked)
	}
	return u, nil
}

// Confirm re-checks the master password for a destructive operation.
func (g *AccountGate) Confirm(u *model.User, password string) error {
	if password == "" {
		return fmt.Errorf("master password is required: %w", errs.ErrInvalidArgument)
	}
	if !pkgcrypto.VerifyPassword(password, u.SaltAuth, u.PwdHash) {
		return errs.ErrInvalidPassword
	}
	return nil
}
