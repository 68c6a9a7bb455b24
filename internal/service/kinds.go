package service

import (
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/passbox/internal/card"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/passcode"
)

// Cipher seals and opens single field values.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// fieldCipher leaves empty values as they are.
type fieldCipher struct{ c Cipher }

func (f fieldCipher) seal(dst *string, v string) error {
	if v == "" {
		*dst = ""
		return nil
	}
	out, err := f.c.Encrypt(v)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func (f fieldCipher) open(dst *string) error {
	if *dst == "" {
		return nil
	}
	out, err := f.c.Decrypt(*dst)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func (f fieldCipher) sealAll(pairs ...sealPair) error {
	for _, p := range pairs {
		if err := f.seal(p.dst, p.v); err != nil {
			return err
		}
	}
	return nil
}

func (f fieldCipher) openAll(dsts ...*string) error {
	for _, d := range dsts {
		if err := f.open(d); err != nil {
			return err
		}
	}
	return nil
}

type sealPair struct {
	dst *string
	v   string
}

// LoginInfo

func (s *VaultServiceImpl) buildLoginInfo(vaultID uuid.UUID, req model.SaveLoginInfoRequest) Builder[model.LoginInfo] {
	return func(id uuid.UUID, title string) (model.LoginInfo, error) {
		pwd, err := s.loginPassword(req.Password)
		if err != nil {
			return model.LoginInfo{}, err
		}
		li := model.LoginInfo{ID: id, VaultID: vaultID, Title: title, Website: req.Website, LoginID: req.LoginID}
		if err := s.fields.seal(&li.Password, pwd); err != nil {
			return model.LoginInfo{}, err
		}
		return li, nil
	}
}

// loginPassword returns the supplied password or a generated one when absent.
func (s *VaultServiceImpl) loginPassword(p *string) (string, error) {
	if p != nil && *p != "" {
		return *p, nil
	}
	return s.gen.Password(passcode.DefaultPasswordLength)
}

func (s *VaultServiceImpl) applyLoginInfo(req model.EditLoginInfoRequest) Applier[model.LoginInfo] {
	return func(cur model.LoginInfo, title string) (model.LoginInfo, error) {
		cur.Title = title
		if req.Website != nil {
			cur.Website = *req.Website
		}
		if req.LoginID != nil {
			cur.LoginID = *req.LoginID
		}
		if req.Password != nil {
			pwd, err := s.loginPassword(req.Password)
			if err != nil {
				return model.LoginInfo{}, err
			}
			if err := s.fields.seal(&cur.Password, pwd); err != nil {
				return model.LoginInfo{}, err
			}
		}
		return cur, nil
	}
}

func (s *VaultServiceImpl) openLoginInfo(li model.LoginInfo) (model.LoginInfo, error) {
	err := s.fields.open(&li.Password)
	return li, err
}

// Note

func (s *VaultServiceImpl) buildNote(vaultID uuid.UUID, req model.SaveNoteRequest) Builder[model.Note] {
	return func(id uuid.UUID, title string) (model.Note, error) {
		n := model.Note{ID: id, VaultID: vaultID, Title: title}
		err := s.fields.seal(&n.Content, req.Content)
		return n, err
	}
}

func (s *VaultServiceImpl) applyNote(req model.EditNoteRequest) Applier[model.Note] {
	return func(cur model.Note, title string) (model.Note, error) {
		cur.Title = title
		if req.Content != nil {
			if err := s.fields.seal(&cur.Content, *req.Content); err != nil {
				return model.Note{}, err
			}
		}
		return cur, nil
	}
}

func (s *VaultServiceImpl) openNote(n model.Note) (model.Note, error) {
	err := s.fields.open(&n.Content)
	return n, err
}

// CreditCard

func validateCard(number, cvv, pin *string) error {
	if number != nil {
		if err := card.ValidateNumber(*number); err != nil {
			return err
		}
	}
	if cvv != nil {
		if err := card.ValidateDigits("cvv", *cvv); err != nil {
			return err
		}
	}
	if pin != nil {
		if err := card.ValidateDigits("pin", *pin); err != nil {
			return err
		}
	}
	return nil
}

func (s *VaultServiceImpl) buildCreditCard(vaultID uuid.UUID, req model.SaveCreditCardRequest) Builder[model.CreditCard] {
	return func(id uuid.UUID, title string) (model.CreditCard, error) {
		c := model.CreditCard{ID: id, VaultID: vaultID, Title: title}
		err := s.fields.sealAll(
			sealPair{&c.CardNumber, req.CardNumber},
			sealPair{&c.CVV, req.CVV},
			sealPair{&c.PIN, req.PIN},
			sealPair{&c.CardType, req.CardType},
			sealPair{&c.ExpiryDate, req.ExpiryDate},
			sealPair{&c.AdditionalInformation, req.AdditionalInformation},
		)
		return c, err
	}
}

func (s *VaultServiceImpl) applyCreditCard(req model.EditCreditCardRequest) Applier[model.CreditCard] {
	return func(cur model.CreditCard, title string) (model.CreditCard, error) {
		cur.Title = title
		var pairs []sealPair
		for _, f := range []struct {
			dst *string
			v   *string
		}{
			{&cur.CardNumber, req.CardNumber},
			{&cur.CVV, req.CVV},
			{&cur.PIN, req.PIN},
			{&cur.CardType, req.CardType},
			{&cur.ExpiryDate, req.ExpiryDate},
			{&cur.AdditionalInformation, req.AdditionalInformation},
		} {
			if f.v != nil {
				pairs = append(pairs, sealPair{f.dst, *f.v})
			}
		}
		if err := s.fields.sealAll(pairs...); err != nil {
			return model.CreditCard{}, err
		}
		return cur, nil
	}
}

func (s *VaultServiceImpl) openCreditCard(c model.CreditCard) (model.CreditCard, error) {
	err := s.fields.openAll(&c.CardNumber, &c.CVV, &c.PIN, &c.CardType, &c.ExpiryDate, &c.AdditionalInformation)
	return c, err
}

// Passport fields are stored as given.

func buildPassport(vaultID uuid.UUID, req model.SavePassportRequest) Builder[model.Passport] {
	return func(id uuid.UUID, title string) (model.Passport, error) {
		return model.Passport{
			ID:             id,
			VaultID:        vaultID,
			Title:          title,
			Surname:        req.Surname,
			GivenNames:     req.GivenNames,
			Nationality:    req.Nationality,
			PlaceOfBirth:   req.PlaceOfBirth,
			DateOfBirth:    req.DateOfBirth,
			PassportNumber: req.PassportNumber,
			IssueDate:      req.IssueDate,
			ExpiryDate:     req.ExpiryDate,
		}, nil
	}
}

func applyPassport(req model.EditPassportRequest) Applier[model.Passport] {
	return func(cur model.Passport, title string) (model.Passport, error) {
		cur.Title = title
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&cur.Surname, req.Surname)
		set(&cur.GivenNames, req.GivenNames)
		set(&cur.Nationality, req.Nationality)
		set(&cur.PlaceOfBirth, req.PlaceOfBirth)
		set(&cur.DateOfBirth, req.DateOfBirth)
		set(&cur.PassportNumber, req.PassportNumber)
		set(&cur.IssueDate, req.IssueDate)
		set(&cur.ExpiryDate, req.ExpiryDate)
		return cur, nil
	}
}

func openPassport(p model.Passport) (model.Passport, error) { return p, nil }
