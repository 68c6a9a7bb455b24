package model

import "github.com/gofrs/uuid/v5"

// SignUpRequest registers a new account.
type SignUpRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AccountResponse summarizes an account after signup, login or logout.
type AccountResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	RegisteredOn string    `json:"registered_on,omitempty"` // "Jan 02, 2006"
	Locked       bool      `json:"locked"`
}

// LoginRequest unlocks an account.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ViewItemRequest selects an item by title.
type ViewItemRequest struct {
	Username string `json:"username"`
	Title    string `json:"title"`
}

// DeleteItemRequest selects an item by title and re-confirms the master password.
type DeleteItemRequest struct {
	Username       string `json:"username"`
	Title          string `json:"title"`
	MasterPassword string `json:"master_password"`
}

// ItemRef identifies an item in responses that must not carry secrets.
type ItemRef struct {
	ID    uuid.UUID `json:"id"`
	Kind  ItemKind  `json:"kind"`
	Title string    `json:"title"`
}

// SaveLoginInfoRequest creates a LoginInfo. A nil Password is replaced by a generated one.
type SaveLoginInfoRequest struct {
	Username string  `json:"username"`
	Title    string  `json:"title"`
	Website  string  `json:"website"`
	LoginID  string  `json:"login_id"`
	Password *string `json:"password,omitempty"`
}

// EditLoginInfoRequest applies a partial update; nil fields stay unchanged.
type EditLoginInfoRequest struct {
	Username string  `json:"username"`
	Title    string  `json:"title"`
	NewTitle *string `json:"new_title,omitempty"`
	Website  *string `json:"website,omitempty"`
	LoginID  *string `json:"login_id,omitempty"`
	Password *string `json:"password,omitempty"`
}

// SaveNoteRequest creates a Note.
type SaveNoteRequest struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// EditNoteRequest applies a partial update; nil fields stay unchanged.
type EditNoteRequest struct {
	Username string  `json:"username"`
	Title    string  `json:"title"`
	NewTitle *string `json:"new_title,omitempty"`
	Content  *string `json:"content,omitempty"`
}

// SaveCreditCardRequest creates a CreditCard.
type SaveCreditCardRequest struct {
	Username              string `json:"username"`
	Title                 string `json:"title"`
	CardNumber            string `json:"card_number"`
	CVV                   string `json:"cvv"`
	PIN                   string `json:"pin"`
	CardType              string `json:"card_type"`
	ExpiryDate            string `json:"expiry_date"`
	AdditionalInformation string `json:"additional_information"`
}

// EditCreditCardRequest applies a partial update; nil fields stay unchanged.
type EditCreditCardRequest struct {
	Username              string  `json:"username"`
	Title                 string  `json:"title"`
	NewTitle              *string `json:"new_title,omitempty"`
	CardNumber            *string `json:"card_number,omitempty"`
	CVV                   *string `json:"cvv,omitempty"`
	PIN                   *string `json:"pin,omitempty"`
	CardType              *string `json:"card_type,omitempty"`
	ExpiryDate            *string `json:"expiry_date,omitempty"`
	AdditionalInformation *string `json:"additional_information,omitempty"`
}

// SavePassportRequest creates a Passport.
type SavePassportRequest struct {
	Username       string `json:"username"`
	Title          string `json:"title"`
	Surname        string `json:"surname"`
	GivenNames     string `json:"given_names"`
	Nationality    string `json:"nationality"`
	PlaceOfBirth   string `json:"place_of_birth"`
	DateOfBirth    string `json:"date_of_birth"`
	PassportNumber string `json:"passport_number"`
	IssueDate      string `json:"issue_date"`
	ExpiryDate     string `json:"expiry_date"`
}

// EditPassportRequest applies a partial update; nil fields stay unchanged.
type EditPassportRequest struct {
	Username       string  `json:"username"`
	Title          string  `json:"title"`
	NewTitle       *string `json:"new_title,omitempty"`
	Surname        *string `json:"surname,omitempty"`
	GivenNames     *string `json:"given_names,omitempty"`
	Nationality    *string `json:"nationality,omitempty"`
	PlaceOfBirth   *string `json:"place_of_birth,omitempty"`
	DateOfBirth    *string `json:"date_of_birth,omitempty"`
	PassportNumber *string `json:"passport_number,omitempty"`
	IssueDate      *string `json:"issue_date,omitempty"`
	ExpiryDate     *string `json:"expiry_date,omitempty"`
}

// Passcode is a generated password or PIN.
type Passcode struct {
	Value  string `json:"value"`
	Length int    `json:"length"`
}
