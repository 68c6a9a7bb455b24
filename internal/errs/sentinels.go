// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Repository-level sentinels.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)

// Error kinds returned by the vault core.
var (
	// ErrInvalidArgument indicates a malformed or missing required field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUsernameExists indicates signup with a username that is already taken.
	ErrUsernameExists = errors.New("username exists")

	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword indicates a wrong master password on login or delete confirmation.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrAccountLocked indicates a vault operation attempted while the account is locked.
	ErrAccountLocked = errors.New("account locked")

	// ErrDuplicateTitle indicates the normalized title is already used in the same item list.
	ErrDuplicateTitle = errors.New("duplicate title")

	// ErrItemNotFound indicates no item with the given title exists in the vault list.
	// It is wrapped with the item kind, e.g. "credit_card: item not found".
	ErrItemNotFound = errors.New("item not found")

	// ErrPersistenceInconsistency indicates a dual-write compensation step failed.
	ErrPersistenceInconsistency = errors.New("persistence inconsistency")

	// ErrInvalidPasscodeLength indicates a non-numeric or out-of-range passcode length.
	ErrInvalidPasscodeLength = errors.New("invalid passcode length")

	// ErrDecode indicates ciphertext that cannot be decoded or authenticated.
	ErrDecode = errors.New("decode")
)

// Transport and auth sentinels.
var (
	// ErrUnauthorized indicates a missing or invalid session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
