package bank

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algebank/algebank/internal/card"
)

func TestCreateAccount(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)

	acct, err := b.CreateAccount(owner, "owner-fp", "hunter2")
	require.NoError(t, err)

	assert.Same(t, owner, acct.Owner())
	assert.Same(t, b, acct.Bank())
	assert.Len(t, acct.Number(), card.NumberLength)
	assert.True(t, acct.Active())
	assert.True(t, acct.Balance().IsZero())

	cvv2, err := acct.CVV2("owner-fp")
	require.NoError(t, err)
	assert.Len(t, cvv2, card.CVV2Length)

	pw, err := acct.Password("owner-fp")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	exp, err := acct.Expiry("owner-fp")
	require.NoError(t, err)
	_, err = card.ParseExpiry(exp.String())
	require.NoError(t, err)
}

func TestCreateAccount_InvalidFingerprint(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)

	_, err := b.CreateAccount(owner, "wrong", "pw")
	assert.ErrorIs(t, err, ErrInvalidFingerprint)

	accts, err := b.Accounts(bankFP)
	require.NoError(t, err)
	assert.Empty(t, accts)

	_, err = b.CreateAccount(nil, "owner-fp", "pw")
	assert.ErrorIs(t, err, ErrNilPerson)
}

func TestCreateAccount_TracksAccountsPerCustomer(t *testing.T) {
	b := newTestBank()
	alice := mustPerson(t, "alice", 5)
	bob := mustPerson(t, "bob", 5)

	a1 := mustAccount(t, b, alice, "alice")
	b1 := mustAccount(t, b, bob, "bob")
	a2 := mustAccount(t, b, alice, "alice")

	customers, err := b.Customers(bankFP)
	require.NoError(t, err)
	assert.Equal(t, []*Person{alice, bob}, customers, "each customer registered once")

	all, err := b.Accounts(bankFP)
	require.NoError(t, err)
	assert.Equal(t, []*Account{a1, b1, a2}, all)

	byCustomer, err := b.CustomerAccounts(bankFP)
	require.NoError(t, err)
	assert.Equal(t, []*Account{a1, a2}, byCustomer[alice.ID()])
	assert.Equal(t, []*Account{b1}, byCustomer[bob.ID()])

	owners, err := b.AccountOwners(bankFP)
	require.NoError(t, err)
	assert.Same(t, alice, owners[a2.ID()])
	assert.Same(t, bob, owners[b1.ID()])
}

func TestAuthenticatedGetters_WrongFingerprint(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")

	_, err := acct.CVV2("nope")
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
	_, err = acct.Password("nope")
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
	_, err = acct.Expiry("nope")
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
	assert.ErrorIs(t, acct.SetPassword("new", "nope"), ErrInvalidFingerprint)

	pw, err := acct.Password("owner-fp")
	require.NoError(t, err)
	assert.Equal(t, "pw", pw, "rejected SetPassword must not change the password")

	bankCalls := map[string]func() error{
		"Customers":        func() error { _, err := b.Customers("nope"); return err },
		"Accounts":         func() error { _, err := b.Accounts("nope"); return err },
		"AccountOwners":    func() error { _, err := b.AccountOwners("nope"); return err },
		"CustomerAccounts": func() error { _, err := b.CustomerAccounts("nope"); return err },
		"PaidLoans":        func() error { _, err := b.PaidLoans("nope"); return err },
		"UnpaidLoans":      func() error { _, err := b.UnpaidLoans("nope"); return err },
		"TotalBalance":     func() error { _, err := b.TotalBalance("nope"); return err },
		"TotalLoan":        func() error { _, err := b.TotalLoan("nope"); return err },
		"SetAccountStatus": func() error { return b.SetAccountStatus(acct, false, "nope") },
		"SetExpiry":        func() error { return b.SetExpiry(acct, "30-01", "nope") },
		"owner SetOwner":   func() error { return b.SetOwner(acct, owner, "nope", bankFP) },
		"bank SetOwner":    func() error { return b.SetOwner(acct, owner, "owner-fp", "nope") },
		"Deposit":          func() error { return b.Deposit(acct, "nope", dec("1")) },
		"Withdraw":         func() error { return b.Withdraw(acct, "nope", dec("1")) },
		"TakeLoan":         func() error { return b.TakeLoan(acct, "nope", dec("1")) },
		"DeleteAccount":    func() error { return b.DeleteAccount(acct, "nope") },
		"DeleteCustomer":   func() error { return b.DeleteCustomer(owner, "nope") },
	}
	for name, call := range bankCalls {
		assert.ErrorIs(t, call(), ErrInvalidFingerprint, name)
	}
	assert.True(t, acct.Active())
}

func TestSetPassword(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")

	require.NoError(t, acct.SetPassword("new-pw", "owner-fp"))
	pw, err := acct.Password("owner-fp")
	require.NoError(t, err)
	assert.Equal(t, "new-pw", pw)
}

func TestDepositWithdraw(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")

	require.NoError(t, b.Deposit(acct, "owner-fp", dec("100")))
	require.NoError(t, b.Withdraw(acct, "owner-fp", dec("40")))
	requireDec(t, "60", acct.Balance())

	err := b.Withdraw(acct, "owner-fp", dec("1000"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	requireDec(t, "60", acct.Balance())
}

func TestDepositWithdraw_InvalidAmount(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")

	assert.ErrorIs(t, b.Deposit(acct, "owner-fp", dec("0")), ErrInvalidAmount)
	assert.ErrorIs(t, b.Deposit(acct, "owner-fp", dec("-5")), ErrInvalidAmount)
	assert.ErrorIs(t, b.Withdraw(acct, "owner-fp", dec("-5")), ErrInvalidAmount)
	assert.True(t, acct.Balance().IsZero())
}

func TestDeposit_ForeignAccount(t *testing.T) {
	b := newTestBank()
	other := New("Other Bank", "other")
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, other, owner, "owner-fp")

	assert.ErrorIs(t, b.Deposit(acct, "owner-fp", dec("1")), ErrAccountNotFound)
	assert.ErrorIs(t, b.Deposit(nil, "owner-fp", dec("1")), ErrAccountNotFound)
}

type transferFixture struct {
	bank     *Bank
	src, dst *Account
	cvv2     string
	expiry   card.Expiry
}

func newTransferFixture(t *testing.T) transferFixture {
	t.Helper()
	b := newTestBank()
	alice := mustPerson(t, "alice", 5)
	bob := mustPerson(t, "bob", 5)
	src := mustAccount(t, b, alice, "alice")
	dst := mustAccount(t, b, bob, "bob")
	require.NoError(t, b.Deposit(src, "alice", dec("500")))
	require.NoError(t, b.SetExpiry(src, "26-01", bankFP))

	cvv2, err := src.CVV2("alice")
	require.NoError(t, err)
	exp, err := src.Expiry("alice")
	require.NoError(t, err)
	return transferFixture{bank: b, src: src, dst: dst, cvv2: cvv2, expiry: exp}
}

func TestTransfer(t *testing.T) {
	f := newTransferFixture(t)

	err := f.bank.Transfer(f.src, f.dst, "alice", f.cvv2, "pw", "26-01", dec("125.50"))
	require.NoError(t, err)
	requireDec(t, "374.50", f.src.Balance())
	requireDec(t, "125.50", f.dst.Balance())
}

func TestTransfer_AcrossYearBoundary(t *testing.T) {
	f := newTransferFixture(t)

	// 25-12 precedes the 26-01 expiration even though its month is larger.
	err := f.bank.Transfer(f.src, f.dst, "alice", f.cvv2, "pw", "25-12", dec("1"))
	require.NoError(t, err)
}

func TestTransfer_Declined(t *testing.T) {
	tests := []struct {
		name     string
		cvv2     string
		password string
		expiry   string
		amount   string
		reason   DeclineReason
	}{
		{"wrong cvv2", "xxxx", "pw", "26-01", "10", DeclineCVV2},
		{"wrong password", "", "bad", "26-01", "10", DeclinePassword},
		{"after expiration", "", "pw", "26-02", "10", DeclineExpired},
		{"unparsable expiry", "", "pw", "2026/01", "10", DeclineExpired},
		{"insufficient funds", "", "pw", "26-01", "500.01", DeclineInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransferFixture(t)
			cvv2 := tt.cvv2
			if cvv2 == "" {
				cvv2 = f.cvv2
			}

			err := f.bank.Transfer(f.src, f.dst, "alice", cvv2, tt.password, tt.expiry, dec(tt.amount))
			require.ErrorIs(t, err, ErrTransferDeclined)

			var de *DeclineError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.reason, de.Reason)

			requireDec(t, "500", f.src.Balance())
			assert.True(t, f.dst.Balance().IsZero())
		})
	}
}

func TestTransfer_HardFailures(t *testing.T) {
	f := newTransferFixture(t)

	err := f.bank.Transfer(f.src, f.dst, "bob", f.cvv2, "pw", "26-01", dec("1"))
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
	assert.NotErrorIs(t, err, ErrTransferDeclined)

	err = f.bank.Transfer(f.src, f.dst, "alice", f.cvv2, "pw", "26-01", dec("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	err = f.bank.Transfer(f.src, nil, "alice", f.cvv2, "pw", "26-01", dec("1"))
	assert.ErrorIs(t, err, ErrAccountNotFound)
	requireDec(t, "500", f.src.Balance())
}

func TestTransfer_ToOtherBank(t *testing.T) {
	f := newTransferFixture(t)
	other := New("Other Bank", "other")
	carol := mustPerson(t, "carol", 3)
	dst := mustAccount(t, other, carol, "carol")

	require.NoError(t, f.bank.Transfer(f.src, dst, "alice", f.cvv2, "pw", "26-01", dec("50")))
	requireDec(t, "50", dst.Balance())
}

func TestDeleteAccount(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	keep := mustAccount(t, b, owner, "owner-fp")
	drop := mustAccount(t, b, owner, "owner-fp")

	require.NoError(t, b.DeleteAccount(drop, "owner-fp"))

	all, err := b.Accounts(bankFP)
	require.NoError(t, err)
	assert.Equal(t, []*Account{keep}, all)

	byCustomer, err := b.CustomerAccounts(bankFP)
	require.NoError(t, err)
	assert.Equal(t, []*Account{keep}, byCustomer[owner.ID()])

	owners, err := b.AccountOwners(bankFP)
	require.NoError(t, err)
	assert.NotContains(t, owners, drop.ID())

	assert.ErrorIs(t, b.DeleteAccount(drop, "owner-fp"), ErrAccountNotFound)
	assert.ErrorIs(t, b.Deposit(drop, "owner-fp", dec("1")), ErrAccountNotFound)
}

func TestDeleteAccount_UnpaidLoan(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")
	require.NoError(t, b.Deposit(acct, "owner-fp", dec("1000")))
	require.NoError(t, b.TakeLoan(acct, "owner-fp", dec("100")))

	assert.ErrorIs(t, b.DeleteAccount(acct, "owner-fp"), ErrUnpaidLoan)

	unpaid, err := b.UnpaidLoans(bankFP)
	require.NoError(t, err)
	require.NoError(t, b.PayLoan(acct, unpaid[owner.ID()]))
	require.NoError(t, b.DeleteAccount(acct, "owner-fp"))
}

func TestDeleteCustomer(t *testing.T) {
	b := newTestBank()
	alice := mustPerson(t, "alice", 5)
	bob := mustPerson(t, "bob", 5)
	mustAccount(t, b, alice, "alice")
	mustAccount(t, b, alice, "alice")
	bobAcct := mustAccount(t, b, bob, "bob")

	require.NoError(t, b.DeleteCustomer(alice, "alice"))

	customers, err := b.Customers(bankFP)
	require.NoError(t, err)
	assert.Equal(t, []*Person{bob}, customers)

	all, err := b.Accounts(bankFP)
	require.NoError(t, err)
	assert.Equal(t, []*Account{bobAcct}, all)

	byCustomer, err := b.CustomerAccounts(bankFP)
	require.NoError(t, err)
	assert.NotContains(t, byCustomer, alice.ID())

	assert.ErrorIs(t, b.DeleteCustomer(alice, "alice"), ErrCustomerNotFound)
}

func TestDeleteCustomer_UnpaidLoan(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")
	require.NoError(t, b.Deposit(acct, "owner-fp", dec("1000")))
	require.NoError(t, b.TakeLoan(acct, "owner-fp", dec("50")))

	assert.ErrorIs(t, b.DeleteCustomer(owner, "owner-fp"), ErrUnpaidLoan)

	customers, err := b.Customers(bankFP)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestSetOwner(t *testing.T) {
	b := newTestBank()
	alice := mustPerson(t, "alice", 5)
	bob := mustPerson(t, "bob", 5)
	acct := mustAccount(t, b, alice, "alice")

	require.NoError(t, b.SetOwner(acct, bob, "alice", bankFP))
	assert.Same(t, bob, acct.Owner())

	byCustomer, err := b.CustomerAccounts(bankFP)
	require.NoError(t, err)
	assert.Empty(t, byCustomer[alice.ID()])
	assert.Equal(t, []*Account{acct}, byCustomer[bob.ID()])

	owners, err := b.AccountOwners(bankFP)
	require.NoError(t, err)
	assert.Same(t, bob, owners[acct.ID()])

	customers, err := b.Customers(bankFP)
	require.NoError(t, err)
	assert.Equal(t, []*Person{alice, bob}, customers)

	// The credentials now answer to the new owner.
	_, err = acct.CVV2("alice")
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
	_, err = acct.CVV2("bob")
	assert.NoError(t, err)

	assert.ErrorIs(t, b.SetOwner(acct, nil, "bob", bankFP), ErrNilPerson)
}

func TestSetAccountStatus(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")

	require.NoError(t, b.SetAccountStatus(acct, false, bankFP))
	assert.False(t, acct.Active())
	require.NoError(t, b.SetAccountStatus(acct, true, bankFP))
	assert.True(t, acct.Active())
}

func TestSetExpiry(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")

	require.NoError(t, b.SetExpiry(acct, "31-07", bankFP))
	exp, err := acct.Expiry("owner-fp")
	require.NoError(t, err)
	assert.Equal(t, card.Expiry{Year: 31, Month: 7}, exp)

	assert.ErrorIs(t, b.SetExpiry(acct, "31-13", bankFP), ErrInvalidExpiry)
	exp, err = acct.Expiry("owner-fp")
	require.NoError(t, err)
	assert.Equal(t, "31-07", exp.String())
}

func TestAccountCompare(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	a := mustAccount(t, b, owner, "owner-fp")
	c := mustAccount(t, b, owner, "owner-fp")

	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -a.Compare(c), c.Compare(a))
}

func TestWriteInfo(t *testing.T) {
	b := newTestBank()
	owner := mustPerson(t, "owner-fp", 5)
	acct := mustAccount(t, b, owner, "owner-fp")
	require.NoError(t, b.Deposit(acct, "owner-fp", dec("12.5")))

	var buf bytes.Buffer
	require.NoError(t, acct.WriteInfo(&buf))
	assert.Equal(t, "Test Person\nTest Bank\n"+acct.Number()+"\n12.5\n1\n", buf.String())

	buf.Reset()
	require.NoError(t, b.WriteInfo(&buf))
	assert.Equal(t, "Test Bank\n0\n0\n", buf.String())
}
