package bank

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const bankFP = "bank-secret"

func mustPerson(t *testing.T, fingerprint string, rank int) *Person {
	t.Helper()
	p, err := NewPerson("Test Person", 30, GenderFemale, fingerprint, rank, true)
	require.NoError(t, err)
	return p
}

func newTestBank() *Bank {
	return New("Test Bank", bankFP, WithRand(rand.New(rand.NewPCG(42, 42))))
}

func mustAccount(t *testing.T, b *Bank, owner *Person, fingerprint string) *Account {
	t.Helper()
	acct, err := b.CreateAccount(owner, fingerprint, "pw")
	require.NoError(t, err)
	return acct
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}
