// Package bank simulates customers, accounts and loans held by a bank.
//
// Sensitive operations take a plaintext fingerprint that must digest to the
// stored one. Errors wrap the package sentinels; Transfer additionally
// reports declined transfers as *DeclineError. A failed operation never
// changes state.
//
// A Bank is not safe for concurrent use.
package bank

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/algebank/algebank/internal/card"
)

// Bank owns the accounts it creates and references the people who hold them.
type Bank struct {
	name        string
	fingerprint Fingerprint
	policy      LoanPolicy
	rng         *rand.Rand

	customers        []*Person
	accounts         []*Account
	accountOwner     map[uuid.UUID]*Person
	customerAccounts map[uuid.UUID][]*Account
	paidLoan         map[uuid.UUID]decimal.Decimal
	unpaidLoan       map[uuid.UUID]decimal.Decimal
	totalBalance     decimal.Decimal // accrued interest
	totalLoan        decimal.Decimal
}

// Option configures a Bank.
type Option func(*Bank)

// WithRand sets the source used for account numbers, CVV2 codes and expiry dates.
func WithRand(r *rand.Rand) Option {
	return func(b *Bank) { b.rng = r }
}

// WithLoanPolicy overrides DefaultLoanPolicy.
func WithLoanPolicy(p LoanPolicy) Option {
	return func(b *Bank) { b.policy = p }
}

// New creates an empty bank. Only the digest of fingerprint is kept.
func New(name, fingerprint string, opts ...Option) *Bank {
	b := &Bank{
		name:             name,
		fingerprint:      HashFingerprint(fingerprint),
		policy:           DefaultLoanPolicy(),
		accountOwner:     make(map[uuid.UUID]*Person),
		customerAccounts: make(map[uuid.UUID][]*Account),
		paidLoan:         make(map[uuid.UUID]decimal.Decimal),
		unpaidLoan:       make(map[uuid.UUID]decimal.Decimal),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return b
}

func (b *Bank) Name() string             { return b.name }
func (b *Bank) Fingerprint() Fingerprint { return b.fingerprint }

// CreateAccount opens an account for owner and registers owner as a customer.
func (b *Bank) CreateAccount(owner *Person, ownerFP, password string) (*Account, error) {
	if owner == nil {
		return nil, ErrNilPerson
	}
	if !owner.VerifyFingerprint(ownerFP) {
		return nil, ErrInvalidFingerprint
	}

	acct := &Account{
		id:       uuid.New(),
		owner:    owner,
		bank:     b,
		number:   card.Digits(b.rng, card.NumberLength),
		active:   true,
		cvv2:     card.Digits(b.rng, card.CVV2Length),
		password: password,
		expiry:   card.RandomExpiry(b.rng),
	}

	b.addCustomer(owner)
	b.accounts = append(b.accounts, acct)
	b.accountOwner[acct.id] = owner
	b.customerAccounts[owner.id] = append(b.customerAccounts[owner.id], acct)
	return acct, nil
}

// DeleteAccount closes acct. It fails while the owner has an unpaid loan.
func (b *Bank) DeleteAccount(acct *Account, ownerFP string) error {
	if acct == nil {
		return ErrAccountNotFound
	}
	if err := acct.authorize(ownerFP); err != nil {
		return err
	}
	if b.hasUnpaidLoan(acct.owner) {
		return ErrUnpaidLoan
	}
	if !b.owns(acct) {
		return ErrAccountNotFound
	}

	b.accounts = removeAccount(b.accounts, acct)
	delete(b.accountOwner, acct.id)
	b.customerAccounts[acct.owner.id] = removeAccount(b.customerAccounts[acct.owner.id], acct)
	return nil
}

// DeleteCustomer closes every account of owner and forgets the customer,
// including loan history. It fails while the customer has an unpaid loan.
func (b *Bank) DeleteCustomer(owner *Person, ownerFP string) error {
	if owner == nil {
		return ErrNilPerson
	}
	if !owner.VerifyFingerprint(ownerFP) {
		return ErrInvalidFingerprint
	}
	if b.hasUnpaidLoan(owner) {
		return ErrUnpaidLoan
	}
	idx := slices.Index(b.customers, owner)
	if idx < 0 {
		return ErrCustomerNotFound
	}

	for _, acct := range b.customerAccounts[owner.id] {
		b.accounts = removeAccount(b.accounts, acct)
		delete(b.accountOwner, acct.id)
	}
	b.customers = slices.Delete(b.customers, idx, idx+1)
	delete(b.customerAccounts, owner.id)
	delete(b.paidLoan, owner.id)
	delete(b.unpaidLoan, owner.id)
	return nil
}

// Deposit credits amount to acct.
func (b *Bank) Deposit(acct *Account, ownerFP string, amount decimal.Decimal) error {
	if err := b.checkAccount(acct, ownerFP); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	acct.balance = acct.balance.Add(amount)
	return nil
}

// Withdraw debits amount from acct.
func (b *Bank) Withdraw(acct *Account, ownerFP string, amount decimal.Decimal) error {
	if err := b.checkAccount(acct, ownerFP); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if acct.balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, acct.balance, amount)
	}
	acct.balance = acct.balance.Sub(amount)
	return nil
}

// Transfer moves amount from src to dst. A bad fingerprint or amount is an
// error; a CVV2, password or expiry mismatch, or a short balance, is a
// *DeclineError. expiry must not be later than the card's expiration.
func (b *Bank) Transfer(src, dst *Account, ownerFP, cvv2, password, expiry string, amount decimal.Decimal) error {
	if err := b.checkAccount(src, ownerFP); err != nil {
		return err
	}
	if dst == nil || dst.bank == nil || !dst.bank.owns(dst) {
		return fmt.Errorf("%w: destination", ErrAccountNotFound)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	if !equalSecret(src.cvv2, cvv2) {
		return decline(DeclineCVV2)
	}
	if !equalSecret(src.password, password) {
		return decline(DeclinePassword)
	}
	exp, err := card.ParseExpiry(expiry)
	if err != nil || exp.After(src.expiry) {
		return decline(DeclineExpired)
	}
	if src.balance.LessThan(amount) {
		return decline(DeclineInsufficient)
	}

	src.balance = src.balance.Sub(amount)
	dst.balance = dst.balance.Add(amount)
	return nil
}

// SetOwner hands acct over to newOwner. Both the current owner's and the
// bank's fingerprints are required. Loans stay with the previous owner.
func (b *Bank) SetOwner(acct *Account, newOwner *Person, ownerFP, bankFP string) error {
	if newOwner == nil {
		return ErrNilPerson
	}
	if acct == nil {
		return ErrAccountNotFound
	}
	if err := acct.authorize(ownerFP); err != nil {
		return err
	}
	if err := b.authorize(bankFP); err != nil {
		return err
	}
	if !b.owns(acct) {
		return ErrAccountNotFound
	}

	prev := acct.owner
	b.customerAccounts[prev.id] = removeAccount(b.customerAccounts[prev.id], acct)
	acct.owner = newOwner
	b.addCustomer(newOwner)
	b.accountOwner[acct.id] = newOwner
	b.customerAccounts[newOwner.id] = append(b.customerAccounts[newOwner.id], acct)
	return nil
}

// SetAccountStatus activates or deactivates acct.
func (b *Bank) SetAccountStatus(acct *Account, active bool, bankFP string) error {
	if err := b.authorize(bankFP); err != nil {
		return err
	}
	if !b.owns(acct) {
		return ErrAccountNotFound
	}
	acct.active = active
	return nil
}

// SetExpiry replaces the expiration date of acct. expiry must be "YY-MM".
func (b *Bank) SetExpiry(acct *Account, expiry, bankFP string) error {
	if err := b.authorize(bankFP); err != nil {
		return err
	}
	if !b.owns(acct) {
		return ErrAccountNotFound
	}
	exp, err := card.ParseExpiry(expiry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExpiry, err)
	}
	acct.expiry = exp
	return nil
}

// Customers returns the registered customers in registration order.
func (b *Bank) Customers(bankFP string) ([]*Person, error) {
	if err := b.authorize(bankFP); err != nil {
		return nil, err
	}
	return slices.Clone(b.customers), nil
}

// Accounts returns the open accounts in creation order.
func (b *Bank) Accounts(bankFP string) ([]*Account, error) {
	if err := b.authorize(bankFP); err != nil {
		return nil, err
	}
	return slices.Clone(b.accounts), nil
}

// AccountOwners maps account ID to owner.
func (b *Bank) AccountOwners(bankFP string) (map[uuid.UUID]*Person, error) {
	if err := b.authorize(bankFP); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*Person, len(b.accountOwner))
	for id, p := range b.accountOwner {
		out[id] = p
	}
	return out, nil
}

// CustomerAccounts maps person ID to that customer's accounts.
func (b *Bank) CustomerAccounts(bankFP string) (map[uuid.UUID][]*Account, error) {
	if err := b.authorize(bankFP); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]*Account, len(b.customerAccounts))
	for id, accts := range b.customerAccounts {
		out[id] = slices.Clone(accts)
	}
	return out, nil
}

// PaidLoans maps person ID to the total loan amount repaid.
func (b *Bank) PaidLoans(bankFP string) (map[uuid.UUID]decimal.Decimal, error) {
	if err := b.authorize(bankFP); err != nil {
		return nil, err
	}
	return cloneAmounts(b.paidLoan), nil
}

// UnpaidLoans maps person ID to the outstanding loan balance.
func (b *Bank) UnpaidLoans(bankFP string) (map[uuid.UUID]decimal.Decimal, error) {
	if err := b.authorize(bankFP); err != nil {
		return nil, err
	}
	return cloneAmounts(b.unpaidLoan), nil
}

// TotalBalance returns the interest the bank has accrued.
func (b *Bank) TotalBalance(bankFP string) (decimal.Decimal, error) {
	if err := b.authorize(bankFP); err != nil {
		return decimal.Zero, err
	}
	return b.totalBalance, nil
}

// TotalLoan returns the total lent, interest included.
func (b *Bank) TotalLoan(bankFP string) (decimal.Decimal, error) {
	if err := b.authorize(bankFP); err != nil {
		return decimal.Zero, err
	}
	return b.totalLoan, nil
}

// WriteInfo writes name, total balance and total loan, one per line.
func (b *Bank) WriteInfo(w io.Writer) error {
	return writeLines(w, b.name, b.totalBalance, b.totalLoan)
}

// DumpInfo writes WriteInfo output to path. An empty path is a no-op.
func (b *Bank) DumpInfo(path string) error {
	return dumpInfo(path, b.WriteInfo)
}

func (b *Bank) authorize(bankFP string) error {
	if !b.fingerprint.Matches(bankFP) {
		return ErrInvalidFingerprint
	}
	return nil
}

// checkAccount verifies the owner fingerprint and that acct is open here.
func (b *Bank) checkAccount(acct *Account, ownerFP string) error {
	if acct == nil {
		return ErrAccountNotFound
	}
	if err := acct.authorize(ownerFP); err != nil {
		return err
	}
	if !b.owns(acct) {
		return ErrAccountNotFound
	}
	return nil
}

func (b *Bank) owns(acct *Account) bool {
	if acct == nil || acct.bank != b {
		return false
	}
	_, ok := b.accountOwner[acct.id]
	return ok
}

func (b *Bank) addCustomer(p *Person) {
	if !slices.Contains(b.customers, p) {
		b.customers = append(b.customers, p)
	}
}

func (b *Bank) hasUnpaidLoan(p *Person) bool {
	return b.unpaidLoan[p.id].IsPositive()
}

func removeAccount(accts []*Account, acct *Account) []*Account {
	if i := slices.Index(accts, acct); i >= 0 {
		return slices.Delete(accts, i, i+1)
	}
	return accts
}

func cloneAmounts(m map[uuid.UUID]decimal.Decimal) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(m))
	for id, v := range m {
		out[id] = v
	}
	return out
}
