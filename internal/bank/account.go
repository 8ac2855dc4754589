package bank

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/algebank/algebank/internal/card"
)

// Account is a bank account. Accounts are created and removed only through
// their Bank.
type Account struct {
	id       uuid.UUID
	owner    *Person
	bank     *Bank
	number   string
	balance  decimal.Decimal
	active   bool
	cvv2     string
	password string
	expiry   card.Expiry
}

func (a *Account) ID() uuid.UUID            { return a.id }
func (a *Account) Owner() *Person           { return a.owner }
func (a *Account) Bank() *Bank              { return a.bank }
func (a *Account) Number() string           { return a.number }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) Active() bool             { return a.active }

// CVV2 returns the card verification code if ownerFP matches the owner.
func (a *Account) CVV2(ownerFP string) (string, error) {
	if err := a.authorize(ownerFP); err != nil {
		return "", err
	}
	return a.cvv2, nil
}

// Password returns the account password if ownerFP matches the owner.
func (a *Account) Password(ownerFP string) (string, error) {
	if err := a.authorize(ownerFP); err != nil {
		return "", err
	}
	return a.password, nil
}

// Expiry returns the expiration date if ownerFP matches the owner.
func (a *Account) Expiry(ownerFP string) (card.Expiry, error) {
	if err := a.authorize(ownerFP); err != nil {
		return card.Expiry{}, err
	}
	return a.expiry, nil
}

// SetPassword replaces the password if ownerFP matches the owner.
func (a *Account) SetPassword(password, ownerFP string) error {
	if err := a.authorize(ownerFP); err != nil {
		return err
	}
	a.password = password
	return nil
}

// Compare orders accounts by account number.
func (a *Account) Compare(other *Account) int {
	return strings.Compare(a.number, other.number)
}

// WriteInfo writes owner name, bank name, number, balance and active flag,
// one per line.
func (a *Account) WriteInfo(w io.Writer) error {
	return writeLines(w, a.owner.Name(), a.bank.Name(), a.number, a.balance, boolDigit(a.active))
}

// DumpInfo writes WriteInfo output to path. An empty path is a no-op.
func (a *Account) DumpInfo(path string) error {
	return dumpInfo(path, a.WriteInfo)
}

func (a *Account) authorize(ownerFP string) error {
	if !a.owner.VerifyFingerprint(ownerFP) {
		return ErrInvalidFingerprint
	}
	return nil
}
