// Package model defines domain entities used by services and repositories.
package model

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// MaxTitleLen bounds a normalized item title.
const MaxTitleLen = 30

// User represents an account. The master password is never stored in plaintext.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"` // lowercase, unique
	PwdHash      []byte    `json:"pwd_hash"` // Argon2id(password, SaltAuth)
	SaltAuth     []byte    `json:"salt_auth"`
	IsLocked     bool      `json:"is_locked"`
	VaultID      uuid.UUID `json:"vault_id"` // 1:1, created at signup
	RegisteredOn time.Time `json:"registered_on"`
}

// Vault holds ordered references (by id) to the items a user owns.
// Insertion order is the only ordering; lookups by title scan the list.
type Vault struct {
	ID          uuid.UUID   `json:"id"`
	LoginInfos  []uuid.UUID `json:"login_infos"`
	Notes       []uuid.UUID `json:"notes"`
	CreditCards []uuid.UUID `json:"credit_cards"`
	Passports   []uuid.UUID `json:"passports"`
}

// Refs returns a pointer to the reference list for kind, or nil for an unknown kind.
func (v *Vault) Refs(kind ItemKind) *[]uuid.UUID {
	switch kind {
	case KindLoginInfo:
		return &v.LoginInfos
	case KindNote:
		return &v.Notes
	case KindCreditCard:
		return &v.CreditCards
	case KindPassport:
		return &v.Passports
	}
	return nil
}

// Clone returns a deep copy of v.
func (v *Vault) Clone() *Vault {
	c := &Vault{ID: v.ID}
	c.LoginInfos = append([]uuid.UUID(nil), v.LoginInfos...)
	c.Notes = append([]uuid.UUID(nil), v.Notes...)
	c.CreditCards = append([]uuid.UUID(nil), v.CreditCards...)
	c.Passports = append([]uuid.UUID(nil), v.Passports...)
	return c
}

// ItemKind names one of the fixed item collections.
type ItemKind string

const (
	KindLoginInfo  ItemKind = "login_info"
	KindNote       ItemKind = "note"
	KindCreditCard ItemKind = "credit_card"
	KindPassport   ItemKind = "passport"
)

// Kinds lists every supported item kind.
var Kinds = []ItemKind{KindLoginInfo, KindNote, KindCreditCard, KindPassport}

// ParseKind validates a kind name.
func ParseKind(s string) (ItemKind, bool) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Record is implemented by every item kind.
type Record interface {
	RecordID() uuid.UUID
	RecordVaultID() uuid.UUID
	RecordTitle() string
}

// LoginInfo is a stored website credential. Password is ciphertext.
type LoginInfo struct {
	ID       uuid.UUID `json:"id"`
	VaultID  uuid.UUID `json:"vault_id"`
	Title    string    `json:"title"`
	Website  string    `json:"website"`
	LoginID  string    `json:"login_id"`
	Password string    `json:"password"`
}

// Note is a free-form secret text. Content is ciphertext.
type Note struct {
	ID      uuid.UUID `json:"id"`
	VaultID uuid.UUID `json:"vault_id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

// CreditCard holds payment card data. Every field except Title is ciphertext when set.
type CreditCard struct {
	ID                    uuid.UUID `json:"id"`
	VaultID               uuid.UUID `json:"vault_id"`
	Title                 string    `json:"title"`
	CardNumber            string    `json:"card_number"`
	CVV                   string    `json:"cvv"`
	PIN                   string    `json:"pin"`
	CardType              string    `json:"card_type"`
	ExpiryDate            string    `json:"expiry_date"`
	AdditionalInformation string    `json:"additional_information"`
}

// Passport holds travel document data. Fields are stored as given.
type Passport struct {
	ID             uuid.UUID `json:"id"`
	VaultID        uuid.UUID `json:"vault_id"`
	Title          string    `json:"title"`
	Surname        string    `json:"surname"`
	GivenNames     string    `json:"given_names"`
	Nationality    string    `json:"nationality"`
	PlaceOfBirth   string    `json:"place_of_birth"`
	DateOfBirth    string    `json:"date_of_birth"`
	PassportNumber string    `json:"passport_number"`
	IssueDate      string    `json:"issue_date"`
	ExpiryDate     string    `json:"expiry_date"`
}

func (l LoginInfo) RecordID() uuid.UUID      { return l.ID }
func (l LoginInfo) RecordVaultID() uuid.UUID { return l.VaultID }
func (l LoginInfo) RecordTitle() string      { return l.Title }

func (n Note) RecordID() uuid.UUID      { return n.ID }
func (n Note) RecordVaultID() uuid.UUID { return n.VaultID }
func (n Note) RecordTitle() string      { return n.Title }

func (c CreditCard) RecordID() uuid.UUID      { return c.ID }
func (c CreditCard) RecordVaultID() uuid.UUID { return c.VaultID }
func (c CreditCard) RecordTitle() string      { return c.Title }

func (p Passport) RecordID() uuid.UUID      { return p.ID }
func (p Passport) RecordVaultID() uuid.UUID { return p.VaultID }
func (p Passport) RecordTitle() string      { return p.Title }

// NormalizeTitle trims and lowercases a title for storage and comparison.
func NormalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeUsername lowercases a username for storage and lookup.
func NormalizeUsername(s string) string {
	return strings.ToLower(s)
}
