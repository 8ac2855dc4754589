package bank

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the scale interest is rounded to.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// LoanPolicy scales loan limits and interest by the borrower's rank.
//
//	ceiling  = balance * rank * CeilingPercentPerRank / 100
//	interest = round(amount * InterestPercent / (rank * 100), MoneyPlaces)
type LoanPolicy struct {
	CeilingPercentPerRank decimal.Decimal
	InterestPercent       decimal.Decimal
}

// DefaultLoanPolicy allows 10% of the balance per rank point and charges
// 10%/rank interest.
func DefaultLoanPolicy() LoanPolicy {
	return LoanPolicy{
		CeilingPercentPerRank: decimal.NewFromInt(10),
		InterestPercent:       decimal.NewFromInt(10),
	}
}

// Ceiling returns the largest outstanding loan allowed for balance at rank.
func (p LoanPolicy) Ceiling(balance decimal.Decimal, rank int) decimal.Decimal {
	return balance.Mul(decimal.NewFromInt(int64(rank))).Mul(p.CeilingPercentPerRank).Div(hundred)
}

// Interest returns the interest charged on amount at rank, rounded to
// MoneyPlaces so a loan can always be paid off exactly.
func (p LoanPolicy) Interest(amount decimal.Decimal, rank int) decimal.Decimal {
	return amount.Mul(p.InterestPercent).DivRound(decimal.NewFromInt(int64(rank)*100), MoneyPlaces)
}

// promotionThreshold is the repaid total, 10^rank, that lifts a customer
// to the next rank.
func promotionThreshold(rank int) decimal.Decimal {
	return decimal.New(1, int32(rank))
}

// TakeLoan lends amount into acct. The request plus any unpaid balance may
// not exceed the policy ceiling. Interest accrues to the bank and is added to
// what the customer owes.
func (b *Bank) TakeLoan(acct *Account, ownerFP string, amount decimal.Decimal) error {
	if err := b.checkAccount(acct, ownerFP); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	owner := acct.owner
	ceiling := b.policy.Ceiling(acct.balance, owner.rank)
	unpaid := b.unpaidLoan[owner.id]
	if amount.Add(unpaid).GreaterThan(ceiling) {
		return fmt.Errorf("%w: %s plus unpaid %s exceeds ceiling %s", ErrInvalidAmount, amount, unpaid, ceiling)
	}

	interest := b.policy.Interest(amount, owner.rank)
	b.totalBalance = b.totalBalance.Add(interest)
	acct.balance = acct.balance.Add(amount)
	b.totalLoan = b.totalLoan.Add(amount).Add(interest)
	b.unpaidLoan[owner.id] = unpaid.Add(amount).Add(interest)
	return nil
}

// PayLoan repays amount of the owner's loan from acct. Once the owner's
// repaid total reaches 10^rank the owner is promoted one rank, up to MaxRank.
func (b *Bank) PayLoan(acct *Account, amount decimal.Decimal) error {
	if !b.owns(acct) {
		return ErrAccountNotFound
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	owner := acct.owner
	unpaid := b.unpaidLoan[owner.id]
	if amount.GreaterThan(unpaid) {
		return fmt.Errorf("%w: %s exceeds unpaid %s", ErrInvalidAmount, amount, unpaid)
	}
	if acct.balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, acct.balance, amount)
	}

	acct.balance = acct.balance.Sub(amount)
	if remaining := unpaid.Sub(amount); remaining.IsZero() {
		delete(b.unpaidLoan, owner.id)
	} else {
		b.unpaidLoan[owner.id] = remaining
	}

	paid := b.paidLoan[owner.id].Add(amount)
	b.paidLoan[owner.id] = paid
	if owner.rank < MaxRank && paid.GreaterThanOrEqual(promotionThreshold(owner.rank)) {
		owner.rank++
	}
	return nil
}
