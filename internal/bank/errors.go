package bank

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFingerprint = errors.New("bank: invalid fingerprint")
	ErrInvalidGender      = errors.New("bank: invalid gender")
	ErrInvalidRank        = errors.New("bank: invalid socioeconomic rank")
	ErrInvalidAge         = errors.New("bank: invalid age")
	ErrInvalidAmount      = errors.New("bank: invalid amount")
	ErrInsufficientFunds  = errors.New("bank: insufficient funds")
	ErrUnpaidLoan         = errors.New("bank: unpaid loan")
	ErrAccountNotFound    = errors.New("bank: account not found")
	ErrCustomerNotFound   = errors.New("bank: customer not found")
	ErrNilPerson          = errors.New("bank: person is nil")
	ErrInvalidExpiry      = errors.New("bank: invalid expiry")

	// ErrTransferDeclined matches every *DeclineError.
	ErrTransferDeclined = errors.New("bank: transfer declined")
)

// DeclineReason explains why a transfer was declined.
type DeclineReason string

const (
	DeclineCVV2         DeclineReason = "cvv2"
	DeclinePassword     DeclineReason = "password"
	DeclineExpired      DeclineReason = "expired"
	DeclineInsufficient DeclineReason = "insufficient funds"
)

// DeclineError is returned by Transfer when the credentials or balance do not
// check out. No money moves when a transfer is declined.
type DeclineError struct {
	Reason DeclineReason
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("transfer declined: %s", e.Reason)
}

// Is makes errors.Is(err, ErrTransferDeclined) true for any DeclineError.
func (e *DeclineError) Is(target error) bool {
	return target == ErrTransferDeclined
}

func decline(reason DeclineReason) error {
	return &DeclineError{Reason: reason}
}
