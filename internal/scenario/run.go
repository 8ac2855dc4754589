package scenario

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/algebank/algebank/internal/bank"
)

// Outcome is how a step ended.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFailed   Outcome = "failed"
	OutcomeDeclined Outcome = "declined"
)

// Options configures a run.
type Options struct {
	// BankName and BankFingerprint apply when the document leaves them empty.
	BankName        string
	BankFingerprint string
	// Policy falls back to bank.DefaultLoanPolicy when zero.
	Policy bank.LoanPolicy
	Rand   *rand.Rand
	// BaseDir resolves relative dump paths.
	BaseDir string
	// Out receives dumps that have no path. Defaults to io.Discard.
	Out io.Writer
	// Warn receives dump files that could not be written. The step still
	// succeeds. Defaults to io.Discard.
	Warn io.Writer
}

// StepResult records one executed step.
type StepResult struct {
	Index   int
	Op      string
	Outcome Outcome
	Message string
}

// AccountSummary is the final state of one account still held by the bank.
type AccountSummary struct {
	Key     string
	Owner   string
	Number  string
	Balance decimal.Decimal
	Active  bool
}

// Summary is the bank state after the last step.
type Summary struct {
	Bank         string
	Customers    int
	Accounts     []AccountSummary
	TotalBalance decimal.Decimal
	TotalLoan    decimal.Decimal
	UnpaidLoans  decimal.Decimal
}

// Result is the outcome of a run.
type Result struct {
	Name    string
	Steps   []StepResult
	Summary Summary
}

type session struct {
	bank        *bank.Bank
	fingerprint string
	people      map[string]*bank.Person
	accounts    map[string]*bank.Account
	accountKeys map[*bank.Account]string
	baseDir     string
	out         io.Writer
	warn        io.Writer
}

// Run executes doc against a fresh bank. A step whose outcome differs from
// its expect field stops the run with ErrUnexpectedOutcome. Once the bank is
// set up, the partial result is returned alongside any error.
func Run(doc *Document, opts Options) (*Result, error) {
	s, err := newSession(doc, opts)
	if err != nil {
		return nil, err
	}
	reg := defaultRegistry()

	res := &Result{Name: doc.Name}
	for i, st := range doc.Steps {
		h, ok := reg[st.Op]
		if !ok {
			res.Summary = s.summary()
			return res, fmt.Errorf("step %d: %w %q", i, ErrUnknownOp, st.Op)
		}

		msg, err := h(s, st)
		if errors.Is(err, ErrInvalidDocument) || errors.Is(err, ErrUnknownRef) {
			res.Summary = s.summary()
			return res, fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}

		outcome := classify(err)
		if err != nil {
			msg = err.Error()
		}
		res.Steps = append(res.Steps, StepResult{Index: i, Op: st.Op, Outcome: outcome, Message: msg})

		if want := expected(st.Expect); outcome != want {
			res.Summary = s.summary()
			return res, fmt.Errorf("step %d (%s): %w: got %s, want %s: %s",
				i, st.Op, ErrUnexpectedOutcome, outcome, want, msg)
		}
	}
	res.Summary = s.summary()
	return res, nil
}

func newSession(doc *Document, opts Options) (*session, error) {
	name := doc.Bank.Name
	if name == "" {
		name = opts.BankName
	}
	fp := doc.Bank.Fingerprint
	if fp == "" {
		fp = opts.BankFingerprint
	}

	policy := opts.Policy
	if policy.CeilingPercentPerRank.IsZero() && policy.InterestPercent.IsZero() {
		policy = bank.DefaultLoanPolicy()
	}
	bankOpts := []bank.Option{bank.WithLoanPolicy(policy)}
	if opts.Rand != nil {
		bankOpts = append(bankOpts, bank.WithRand(opts.Rand))
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	warn := opts.Warn
	if warn == nil {
		warn = io.Discard
	}

	s := &session{
		bank:        bank.New(name, fp, bankOpts...),
		fingerprint: fp,
		people:      make(map[string]*bank.Person, len(doc.People)),
		accounts:    make(map[string]*bank.Account),
		accountKeys: make(map[*bank.Account]string),
		baseDir:     opts.BaseDir,
		out:         out,
		warn:        warn,
	}
	for _, ps := range doc.People {
		alive := true
		if ps.Alive != nil {
			alive = *ps.Alive
		}
		p, err := bank.NewPerson(ps.Name, ps.Age, ps.Gender, ps.Fingerprint, ps.Rank, alive)
		if err != nil {
			return nil, fmt.Errorf("person %q: %w", ps.Key, err)
		}
		s.people[ps.Key] = p
	}
	return s, nil
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, bank.ErrTransferDeclined):
		return OutcomeDeclined
	default:
		return OutcomeFailed
	}
}

func expected(e Expect) Outcome {
	switch e {
	case ExpectError:
		return OutcomeFailed
	case ExpectDeclined:
		return OutcomeDeclined
	default:
		return OutcomeOK
	}
}

func (s *session) person(key string) (*bank.Person, error) {
	p, ok := s.people[key]
	if !ok {
		return nil, fmt.Errorf("%w: person %q", ErrUnknownRef, key)
	}
	return p, nil
}

func (s *session) account(key string) (*bank.Account, error) {
	acct, ok := s.accounts[key]
	if !ok {
		return nil, fmt.Errorf("%w: account %q", ErrUnknownRef, key)
	}
	return acct, nil
}

func (s *session) addAccount(key string, acct *bank.Account) {
	s.accounts[key] = acct
	s.accountKeys[acct] = key
}

// bankFingerprint lets a step try a different institutional secret.
func (s *session) bankFingerprint(st Step) string {
	if st.BankFingerprint != "" {
		return st.BankFingerprint
	}
	return s.fingerprint
}

func (s *session) summary() Summary {
	sum := Summary{Bank: s.bank.Name()}

	// The session holds the bank's own fingerprint, so these cannot fail.
	customers, _ := s.bank.Customers(s.fingerprint)
	accounts, _ := s.bank.Accounts(s.fingerprint)
	unpaid, _ := s.bank.UnpaidLoans(s.fingerprint)
	sum.TotalBalance, _ = s.bank.TotalBalance(s.fingerprint)
	sum.TotalLoan, _ = s.bank.TotalLoan(s.fingerprint)

	sum.Customers = len(customers)
	for _, acct := range accounts {
		sum.Accounts = append(sum.Accounts, AccountSummary{
			Key:     s.accountKeys[acct],
			Owner:   acct.Owner().Name(),
			Number:  acct.Number(),
			Balance: acct.Balance(),
			Active:  acct.Active(),
		})
	}
	for _, amount := range unpaid {
		sum.UnpaidLoans = sum.UnpaidLoans.Add(amount)
	}
	return sum
}
