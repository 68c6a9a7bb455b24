// Package service contains the vault application services: account gating,
// per-kind item stores and the request-level facade.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/passbox/internal/crypto"
	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/limiter"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/passcode"
	"github.com/and161185/passbox/internal/repository"
)

// MinPasswordLen is the shortest accepted master password.
const MinPasswordLen = 10

// RegisteredOnLayout formats AccountResponse.RegisteredOn.
const RegisteredOnLayout = "Jan 02, 2006"

// VaultService is the request-level API of the vault.
type VaultService interface {
	SignUp(ctx context.Context, req model.SignUpRequest) (model.AccountResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AccountResponse, error)
	Logout(ctx context.Context, username string) (model.AccountResponse, error)

	SaveLoginInfo(ctx context.Context, req model.SaveLoginInfoRequest) (model.ItemRef, error)
	EditLoginInfo(ctx context.Context, req model.EditLoginInfoRequest) (model.ItemRef, error)
	ViewLoginInfo(ctx context.Context, req model.ViewItemRequest) (model.LoginInfo, error)
	DeleteLoginInfo(ctx context.Context, req model.DeleteItemRequest) (model.ItemRef, error)

	CreateNote(ctx context.Context, req model.SaveNoteRequest) (model.ItemRef, error)
	EditNote(ctx context.Context, req model.EditNoteRequest) (model.ItemRef, error)
	ViewNote(ctx context.Context, req model.ViewItemRequest) (model.Note, error)
	DeleteNote(ctx context.Context, req model.DeleteItemRequest) (model.ItemRef, error)

	SaveCreditCard(ctx context.Context, req model.SaveCreditCardRequest) (model.ItemRef, error)
	EditCreditCard(ctx context.Context, req model.EditCreditCardRequest) (model.ItemRef, error)
	ViewCreditCard(ctx context.Context, req model.ViewItemRequest) (model.CreditCard, error)
	DeleteCreditCard(ctx context.Context, req model.DeleteItemRequest) (model.ItemRef, error)

	SavePassport(ctx context.Context, req model.SavePassportRequest) (model.ItemRef, error)
	EditPassport(ctx context.Context, req model.EditPassportRequest) (model.ItemRef, error)
	ViewPassport(ctx context.Context, req model.ViewItemRequest) (model.Passport, error)
	DeletePassport(ctx context.Context, req model.DeleteItemRequest) (model.ItemRef, error)

	ListItems(ctx context.Context, username string, kind model.ItemKind) ([]model.ItemRef, error)

	GeneratePassword(ctx context.Context, length string) (model.Passcode, error)
	GeneratePin(ctx context.Context, length string) (model.Passcode, error)
}

type VaultServiceImpl struct {
	users  repository.UserRepository
	vaults repository.VaultRepository
	gate   *AccountGate
	agg    *VaultAggregate
	fields fieldCipher
	gen    passcode.Generator
	now    func() time.Time
	log    *zap.Logger
}

// NewVaultService wires the facade over a storage backend.
// A nil generator uses crypto/rand; a nil limiter never blocks.
func NewVaultService(store *repository.Store, box Cipher, gen passcode.Generator, lim limiter.Limiter, log *zap.Logger) *VaultServiceImpl {
	if gen == nil {
		gen = passcode.NewRandom()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &VaultServiceImpl{
		users:  store.Users,
		vaults: store.Vaults,
		gate:   NewAccountGate(store.Users, lim, log),
		agg:    NewVaultAggregate(store, log),
		fields: fieldCipher{c: box},
		gen:    gen,
		now:    time.Now,
		log:    log,
	}
}

func (s *VaultServiceImpl) account(u *model.User) model.AccountResponse {
	return model.AccountResponse{
		ID:           u.ID,
		Username:     u.Username,
		RegisteredOn: u.RegisteredOn.Format(RegisteredOnLayout),
		Locked:       u.IsLocked,
	}
}

func validateUsername(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("username cannot be empty: %w", errs.ErrInvalidArgument)
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("username cannot contain whitespace: %w", errs.ErrInvalidArgument)
	}
	return model.NormalizeUsername(raw), nil
}

// SignUp creates a locked account with an empty vault.
func (s *VaultServiceImpl) SignUp(ctx context.Context, req model.SignUpRequest) (model.AccountResponse, error) {
	name, err := validateUsername(req.Username)
	if err != nil {
		return model.AccountResponse{}, err
	}
	switch {
	case req.Password == "":
		return model.AccountResponse{}, fmt.Errorf("password cannot be empty: %w", errs.ErrInvalidArgument)
	case req.Password != req.ConfirmPassword:
		return model.AccountResponse{}, fmt.Errorf("passwords do not match: %w", errs.ErrInvalidArgument)
	case utf8.RuneCountInString(req.Password) < MinPasswordLen:
		return model.AccountResponse{}, fmt.Errorf("password shorter than %d characters: %w", MinPasswordLen, errs.ErrInvalidArgument)
	}

	if _, err := s.users.GetByUsername(ctx, name); err == nil {
		return model.AccountResponse{}, fmt.Errorf("%q: %w", name, errs.ErrUsernameExists)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.AccountResponse{}, err
	}

	hash, salt, err := pkgcrypto.NewMasterHash(req.Password)
	if err != nil {
		return model.AccountResponse{}, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.AccountResponse{}, err
	}
	vid, err := uuid.NewV4()
	if err != nil {
		return model.AccountResponse{}, err
	}

	if err := s.vaults.Save(ctx, &model.Vault{ID: vid}); err != nil {
		return model.AccountResponse{}, err
	}
	u := &model.User{
		ID:           uid,
		Username:     name,
		PwdHash:      hash,
		SaltAuth:     salt,
		IsLocked:     true,
		VaultID:      vid,
		RegisteredOn: s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if derr := s.vaults.Delete(ctx, vid); derr != nil {
			s.log.Error("signup vault cleanup failed", zap.Stringer("vault", vid), zap.Error(derr))
			return model.AccountResponse{}, fmt.Errorf("create user (%v), cleanup vault (%v): %w",
				err, derr, errs.ErrPersistenceInconsistency)
		}
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.AccountResponse{}, fmt.Errorf("%q: %w", name, errs.ErrUsernameExists)
		}
		return model.AccountResponse{}, err
	}
	s.log.Info("account created", zap.String("username", name))
	return s.account(u), nil
}

// Login unlocks the account.
func (s *VaultServiceImpl) Login(ctx context.Context, req model.LoginRequest) (model.AccountResponse, error) {
	u, err := s.gate.Login(ctx, req.Username, req.Password)
	if err != nil {
		return model.AccountResponse{}, err
	}
	return s.account(u), nil
}

// Logout locks the account.
func (s *VaultServiceImpl) Logout(ctx context.Context, username string) (model.AccountResponse, error) {
	u, err := s.gate.Logout(ctx, username)
	if err != nil {
		return model.AccountResponse{}, err
	}
	return s.account(u), nil
}

// confirmed checks the lock state and the master password of a delete.
func (s *VaultServiceImpl) confirmed(ctx context.Context, req model.DeleteItemRequest) (*model.User, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Confirm(u, req.MasterPassword); err != nil {
		return nil, err
	}
	return u, nil
}

// SaveLoginInfo stores a website credential. A missing password is generated.
func (s *VaultServiceImpl) SaveLoginInfo(ctx context.Context, req model.SaveLoginInfoRequest) (model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.ItemRef{}, err
	}
	li, err := add(ctx, s.agg, s.agg.LoginInfos, u.VaultID, req.Title, s.buildLoginInfo(u.VaultID, req))
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindLoginInfo, li), nil
}

func (s *VaultServiceImpl) EditLoginInfo(ctx context.Context, req model.EditLoginInfoRequest) (model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.ItemRef{}, err
	}
	li, err := edit(ctx, s.agg, s.agg.LoginInfos, u.VaultID, req.Title, req.NewTitle, s.applyLoginInfo(req))
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindLoginInfo, li), nil
}

func (s *VaultServiceImpl) ViewLoginInfo(ctx context.Context, req model.ViewItemRequest) (model.LoginInfo, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.LoginInfo{}, err
	}
	return view(ctx, s.agg, s.agg.LoginInfos, u.VaultID, req.Title, s.openLoginInfo)
}

func (s *VaultServiceImpl) DeleteLoginInfo(ctx context.Context, req model.DeleteItemRequest) (model.ItemRef, error) {
	u, err := s.confirmed(ctx, req)
	if err != nil {
		return model.ItemRef{}, err
	}
	li, err := remove(ctx, s.agg, s.agg.LoginInfos, u.VaultID, req.Title)
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindLoginInfo, li), nil
}

// CreateNote stores a secret note.
func (s *VaultServiceImpl) CreateNote(ctx context.Context, req model.SaveNoteRequest) (model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.ItemRef{}, err
	}
	n, err := add(ctx, s.agg, s.agg.Notes, u.VaultID, req.Title, s.buildNote(u.VaultID, req))
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindNote, n), nil
}

func (s *VaultServiceImpl) EditNote(ctx context.Context, req model.EditNoteRequest) (model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.ItemRef{}, err
	}
	n, err := edit(ctx, s.agg, s.agg.Notes, u.VaultID, req.Title, req.NewTitle, s.applyNote(req))
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindNote, n), nil
}

func (s *VaultServiceImpl) ViewNote(ctx context.Context, req model.ViewItemRequest) (model.Note, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.Note{}, err
	}
	return view(ctx, s.agg, s.agg.Notes, u.VaultID, req.Title, s.openNote)
}

func (s *VaultServiceImpl) DeleteNote(ctx context.Context, req model.DeleteItemRequest) (model.ItemRef, error) {
	u, err := s.confirmed(ctx, req)
	if err != nil {
		return model.ItemRef{}, err
	}
	n, err := remove(ctx, s.agg, s.agg.Notes, u.VaultID, req.Title)
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindNote, n), nil
}

// SaveCreditCard validates the card fields and stores the card.
func (s *VaultServiceImpl) SaveCreditCard(ctx context.Context, req model.SaveCreditCardRequest) (model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.ItemRef{}, err
	}
	if err := validateCard(&req.CardNumber, &req.CVV, &req.PIN); err != nil {
		return model.ItemRef{}, err
	}
	c, err := add(ctx, s.agg, s.agg.CreditCards, u.VaultID, req.Title, s.buildCreditCard(u.VaultID, req))
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindCreditCard, c), nil
}

func (s *VaultServiceImpl) EditCreditCard(ctx context.Context, req model.EditCreditCardRequest) (model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.ItemRef{}, err
	}
	if err := validateCard(req.CardNumber, req.CVV, req.PIN); err != nil {
		return model.ItemRef{}, err
	}
	c, err := edit(ctx, s.agg, s.agg.CreditCards, u.VaultID, req.Title, req.NewTitle, s.applyCreditCard(req))
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindCreditCard, c), nil
}

func (s *VaultServiceImpl) ViewCreditCard(ctx context.Context, req model.ViewItemRequest) (model.CreditCard, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.CreditCard{}, err
	}
	return view(ctx, s.agg, s.agg.CreditCards, u.VaultID, req.Title, s.openCreditCard)
}

func (s *VaultServiceImpl) DeleteCreditCard(ctx context.Context, req model.DeleteItemRequest) (model.ItemRef, error) {
	u, err := s.confirmed(ctx, req)
	if err != nil {
		return model.ItemRef{}, err
	}
	c, err := remove(ctx, s.agg, s.agg.CreditCards, u.VaultID, req.Title)
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindCreditCard, c), nil
}

func (s *VaultServiceImpl) SavePassport(ctx context.Context, req model.SavePassportRequest) (model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.ItemRef{}, err
	}
	p, err := add(ctx, s.agg, s.agg.Passports, u.VaultID, req.Title, buildPassport(u.VaultID, req))
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindPassport, p), nil
}

func (s *VaultServiceImpl) EditPassport(ctx context.Context, req model.EditPassportRequest) (model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.ItemRef{}, err
	}
	p, err := edit(ctx, s.agg, s.agg.Passports, u.VaultID, req.Title, req.NewTitle, applyPassport(req))
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindPassport, p), nil
}

func (s *VaultServiceImpl) ViewPassport(ctx context.Context, req model.ViewItemRequest) (model.Passport, error) {
	u, err := s.gate.CheckUnlocked(ctx, req.Username)
	if err != nil {
		return model.Passport{}, err
	}
	return view(ctx, s.agg, s.agg.Passports, u.VaultID, req.Title, openPassport)
}

func (s *VaultServiceImpl) DeletePassport(ctx context.Context, req model.DeleteItemRequest) (model.ItemRef, error) {
	u, err := s.confirmed(ctx, req)
	if err != nil {
		return model.ItemRef{}, err
	}
	p, err := remove(ctx, s.agg, s.agg.Passports, u.VaultID, req.Title)
	if err != nil {
		return model.ItemRef{}, err
	}
	return refOf(model.KindPassport, p), nil
}

// ListItems returns the titles of one kind in insertion order. Secrets are never included.
func (s *VaultServiceImpl) ListItems(ctx context.Context, username string, kind model.ItemKind) ([]model.ItemRef, error) {
	u, err := s.gate.CheckUnlocked(ctx, username)
	if err != nil {
		return nil, err
	}
	switch kind {
	case model.KindLoginInfo:
		return list(ctx, s.agg, s.agg.LoginInfos, u.VaultID)
	case model.KindNote:
		return list(ctx, s.agg, s.agg.Notes, u.VaultID)
	case model.KindCreditCard:
		return list(ctx, s.agg, s.agg.CreditCards, u.VaultID)
	case model.KindPassport:
		return list(ctx, s.agg, s.agg.Passports, u.VaultID)
	}
	return nil, fmt.Errorf("unknown item kind %q: %w", kind, errs.ErrInvalidArgument)
}

// GeneratePassword returns a random password. It does not touch any account.
func (s *VaultServiceImpl) GeneratePassword(_ context.Context, length string) (model.Passcode, error) {
	n, err := passcode.ParseLength(length)
	if err != nil {
		return model.Passcode{}, err
	}
	v, err := s.gen.Password(n)
	if err != nil {
		return model.Passcode{}, err
	}
	return model.Passcode{Value: v, Length: n}, nil
}

// GeneratePin returns a random numeric PIN.
func (s *VaultServiceImpl) GeneratePin(_ context.Context, length string) (model.Passcode, error) {
	n, err := passcode.ParseLength(length)
	if err != nil {
		return model.Passcode{}, err
	}
	v, err := s.gen.PIN(n)
	if err != nil {
		return model.Passcode{}, err
	}
	return model.Passcode{Value: v, Length: n}, nil
}

var _ VaultService = (*VaultServiceImpl)(nil)
