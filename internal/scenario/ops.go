package scenario

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/algebank/algebank/internal/bank"
)

const (
	opCreateAccount  = "create_account"
	opDeposit        = "deposit"
	opWithdraw       = "withdraw"
	opTransfer       = "transfer"
	opTakeLoan       = "take_loan"
	opPayLoan        = "pay_loan"
	opDeleteAccount  = "delete_account"
	opDeleteCustomer = "delete_customer"
	opSetStatus      = "set_status"
	opSetOwner       = "set_owner"
	opSetExpiry      = "set_expiry"
	opSetPassword    = "set_password"
	opSetRank        = "set_rank"
	opSetAge         = "set_age"
	opSetAlive       = "set_alive"
	opDump           = "dump"
)

// Placeholders a transfer step may use in place of credentials. They are
// read from the source account with the step's fingerprint.
const (
	placeholderCVV2     = "$cvv2"
	placeholderPassword = "$password"
	placeholderExpiry   = "$expiry"
)

// handler executes one step. The returned string describes what happened.
type handler func(s *session, st Step) (string, error)

type registry map[string]handler

// register adds a handler. Panics on duplicate op.
func (r registry) register(op string, h handler) {
	if _, ok := r[op]; ok {
		panic("duplicate scenario op: " + op)
	}
	r[op] = h
}

func defaultRegistry() registry {
	r := make(registry)
	r.register(opCreateAccount, runCreateAccount)
	r.register(opDeposit, runDeposit)
	r.register(opWithdraw, runWithdraw)
	r.register(opTransfer, runTransfer)
	r.register(opTakeLoan, runTakeLoan)
	r.register(opPayLoan, runPayLoan)
	r.register(opDeleteAccount, runDeleteAccount)
	r.register(opDeleteCustomer, runDeleteCustomer)
	r.register(opSetStatus, runSetStatus)
	r.register(opSetOwner, runSetOwner)
	r.register(opSetExpiry, runSetExpiry)
	r.register(opSetPassword, runSetPassword)
	r.register(opSetRank, runSetRank)
	r.register(opSetAge, runSetAge)
	r.register(opSetAlive, runSetAlive)
	r.register(opDump, runDump)
	return r
}

func runCreateAccount(s *session, st Step) (string, error) {
	p, err := s.person(st.Person)
	if err != nil {
		return "", err
	}
	acct, err := s.bank.CreateAccount(p, st.Fingerprint, st.Password)
	if err != nil {
		return "", err
	}
	s.addAccount(st.Key, acct)
	return fmt.Sprintf("opened %s for %s", acct.Number(), p.Name()), nil
}

func runDeposit(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	if err := s.bank.Deposit(acct, st.Fingerprint, st.Amount.Decimal); err != nil {
		return "", err
	}
	return "balance " + acct.Balance().String(), nil
}

func runWithdraw(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	if err := s.bank.Withdraw(acct, st.Fingerprint, st.Amount.Decimal); err != nil {
		return "", err
	}
	return "balance " + acct.Balance().String(), nil
}

func runTransfer(s *session, st Step) (string, error) {
	src, err := s.account(st.From)
	if err != nil {
		return "", err
	}
	dst, err := s.account(st.To)
	if err != nil {
		return "", err
	}
	cvv2 := resolveCredential(src, st.Fingerprint, st.CVV2)
	password := resolveCredential(src, st.Fingerprint, st.Password)
	expiry := resolveCredential(src, st.Fingerprint, st.Expiry)
	if err := s.bank.Transfer(src, dst, st.Fingerprint, cvv2, password, expiry, st.Amount.Decimal); err != nil {
		return "", err
	}
	return fmt.Sprintf("moved %s, balance %s", st.Amount.String(), src.Balance().String()), nil
}

// resolveCredential replaces a placeholder with the account's stored value.
// A wrong fingerprint leaves the placeholder as is; Transfer rejects it anyway.
func resolveCredential(acct *bank.Account, fingerprint, value string) string {
	switch value {
	case placeholderCVV2:
		if v, err := acct.CVV2(fingerprint); err == nil {
			return v
		}
	case placeholderPassword:
		if v, err := acct.Password(fingerprint); err == nil {
			return v
		}
	case placeholderExpiry:
		if v, err := acct.Expiry(fingerprint); err == nil {
			return v.String()
		}
	}
	return value
}

func runTakeLoan(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	if err := s.bank.TakeLoan(acct, st.Fingerprint, st.Amount.Decimal); err != nil {
		return "", err
	}
	return "balance " + acct.Balance().String(), nil
}

func runPayLoan(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	if err := s.bank.PayLoan(acct, st.Amount.Decimal); err != nil {
		return "", err
	}
	return fmt.Sprintf("balance %s, rank %d", acct.Balance().String(), acct.Owner().Rank()), nil
}

func runDeleteAccount(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	if err := s.bank.DeleteAccount(acct, st.Fingerprint); err != nil {
		return "", err
	}
	return "deleted " + acct.Number(), nil
}

func runDeleteCustomer(s *session, st Step) (string, error) {
	p, err := s.person(st.Person)
	if err != nil {
		return "", err
	}
	if err := s.bank.DeleteCustomer(p, st.Fingerprint); err != nil {
		return "", err
	}
	return "deleted " + p.Name(), nil
}

func runSetStatus(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	if st.Active == nil {
		return "", fmt.Errorf("%w: set_status needs active", ErrInvalidDocument)
	}
	if err := s.bank.SetAccountStatus(acct, *st.Active, s.bankFingerprint(st)); err != nil {
		return "", err
	}
	return fmt.Sprintf("active %t", *st.Active), nil
}

func runSetOwner(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	p, err := s.person(st.NewOwner)
	if err != nil {
		return "", err
	}
	if err := s.bank.SetOwner(acct, p, st.Fingerprint, s.bankFingerprint(st)); err != nil {
		return "", err
	}
	return "owner " + p.Name(), nil
}

func runSetExpiry(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	if err := s.bank.SetExpiry(acct, st.Expiry, s.bankFingerprint(st)); err != nil {
		return "", err
	}
	return "expiry " + st.Expiry, nil
}

func runSetPassword(s *session, st Step) (string, error) {
	acct, err := s.account(st.Account)
	if err != nil {
		return "", err
	}
	if err := acct.SetPassword(st.Password, st.Fingerprint); err != nil {
		return "", err
	}
	return "password changed", nil
}

func runSetRank(s *session, st Step) (string, error) {
	p, err := s.person(st.Person)
	if err != nil {
		return "", err
	}
	if err := p.SetRank(st.Rank); err != nil {
		return "", err
	}
	return fmt.Sprintf("rank %d", st.Rank), nil
}

func runSetAge(s *session, st Step) (string, error) {
	p, err := s.person(st.Person)
	if err != nil {
		return "", err
	}
	if err := p.SetAge(st.Age); err != nil {
		return "", err
	}
	return fmt.Sprintf("age %d", st.Age), nil
}

func runSetAlive(s *session, st Step) (string, error) {
	p, err := s.person(st.Person)
	if err != nil {
		return "", err
	}
	if st.Alive == nil {
		return "", fmt.Errorf("%w: set_alive needs alive", ErrInvalidDocument)
	}
	p.SetAlive(*st.Alive)
	return fmt.Sprintf("alive %t", *st.Alive), nil
}

// Dump targets.
const (
	targetBank    = "bank"
	targetPerson  = "person"
	targetAccount = "account"
)

// dumper is implemented by Bank, Person and Account.
type dumper interface {
	WriteInfo(w io.Writer) error
	DumpInfo(path string) error
}

func runDump(s *session, st Step) (string, error) {
	var d dumper
	switch st.Target {
	case targetBank:
		d = s.bank
	case targetPerson:
		p, err := s.person(st.Person)
		if err != nil {
			return "", err
		}
		d = p
	case targetAccount:
		acct, err := s.account(st.Account)
		if err != nil {
			return "", err
		}
		d = acct
	default:
		return "", fmt.Errorf("%w: unknown dump target %q", ErrInvalidDocument, st.Target)
	}

	if st.Path == "" {
		if err := d.WriteInfo(s.out); err != nil {
			return "", fmt.Errorf("writing %s info: %w", st.Target, err)
		}
		return "dumped " + st.Target, nil
	}
	path := st.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	if err := d.DumpInfo(path); err != nil {
		fmt.Fprintf(s.warn, "warning: dump %s: %v\n", st.Target, err)
		return "skipped dump of " + st.Target + ": " + err.Error(), nil
	}
	return "dumped " + st.Target + " to " + st.Path, nil
}
