// Package scenario drives a bank simulation from a YAML script.
//
// A document declares the bank, the people who may become customers and an
// ordered list of steps. Every run starts from an empty bank.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDocument   = errors.New("scenario: invalid document")
	ErrUnknownOp         = errors.New("scenario: unknown op")
	ErrUnknownRef        = errors.New("scenario: unknown reference")
	ErrUnexpectedOutcome = errors.New("scenario: unexpected outcome")
)

// Document is a parsed scenario file.
type Document struct {
	Name   string       `yaml:"name"`
	Bank   BankSpec     `yaml:"bank"`
	People []PersonSpec `yaml:"people"`
	Steps  []Step       `yaml:"steps"`
}

// BankSpec overrides the configured bank identity when set.
type BankSpec struct {
	Name        string `yaml:"name"`
	Fingerprint string `yaml:"fingerprint"`
}

// PersonSpec declares a person. Alive defaults to true.
type PersonSpec struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Age         int    `yaml:"age"`
	Gender      string `yaml:"gender"`
	Fingerprint string `yaml:"fingerprint"`
	Rank        int    `yaml:"rank"`
	Alive       *bool  `yaml:"alive"`
}

// Expect is the outcome a step asserts. The zero value expects success.
type Expect string

const (
	ExpectOK       Expect = ""
	ExpectError    Expect = "error"
	ExpectDeclined Expect = "declined"
)

// Step is one operation. Which fields are read depends on Op.
type Step struct {
	Op string `yaml:"op"`

	// Keys into the people and account tables.
	Key      string `yaml:"key"`
	Person   string `yaml:"person"`
	NewOwner string `yaml:"new_owner"`
	Account  string `yaml:"account"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`

	Fingerprint     string `yaml:"fingerprint"`
	BankFingerprint string `yaml:"bank_fingerprint"`
	Password        string `yaml:"password"`
	CVV2            string `yaml:"cvv2"`
	Expiry          string `yaml:"expiry"`
	Amount          Amount `yaml:"amount"`
	Active          *bool  `yaml:"active"`
	Alive           *bool  `yaml:"alive"`
	Rank            int    `yaml:"rank"`
	Age             int    `yaml:"age"`

	Target string `yaml:"target"`
	Path   string `yaml:"path"`

	Expect Expect `yaml:"expect"`
}

// Amount is a decimal money value written as a plain YAML number or string.
type Amount struct {
	decimal.Decimal
}

// UnmarshalYAML parses the scalar text exactly, without a float round trip.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: parsing amount %q: %w", node.Line, node.Value, err)
	}
	a.Decimal = d
	return nil
}

// Load reads and validates a scenario file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a scenario document.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := doc.validate(defaultRegistry()); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validate checks that every op is registered and every key refers to a
// declared person or to an account created by an earlier step.
func (d *Document) validate(reg registry) error {
	people := make(map[string]bool, len(d.People))
	for i, p := range d.People {
		if p.Key == "" {
			return fmt.Errorf("%w: person %d has no key", ErrInvalidDocument, i)
		}
		if people[p.Key] {
			return fmt.Errorf("%w: duplicate person key %q", ErrInvalidDocument, p.Key)
		}
		people[p.Key] = true
	}

	accounts := make(map[string]bool)
	for i, st := range d.Steps {
		if _, ok := reg[st.Op]; !ok {
			return fmt.Errorf("step %d: %w %q", i, ErrUnknownOp, st.Op)
		}
		switch st.Expect {
		case ExpectOK, ExpectError, ExpectDeclined:
		default:
			return fmt.Errorf("%w: step %d: unknown expect %q", ErrInvalidDocument, i, st.Expect)
		}
		for _, key := range []string{st.Person, st.NewOwner} {
			if key != "" && !people[key] {
				return fmt.Errorf("step %d: %w: person %q", i, ErrUnknownRef, key)
			}
		}
		for _, key := range []string{st.Account, st.From, st.To} {
			if key != "" && !accounts[key] {
				return fmt.Errorf("step %d: %w: account %q", i, ErrUnknownRef, key)
			}
		}
		if st.Op == opCreateAccount {
			if st.Key == "" {
				return fmt.Errorf("%w: step %d: create_account needs a key", ErrInvalidDocument, i)
			}
			if accounts[st.Key] {
				return fmt.Errorf("%w: step %d: duplicate account key %q", ErrInvalidDocument, i, st.Key)
			}
			accounts[st.Key] = true
		}
	}
	return nil
}
