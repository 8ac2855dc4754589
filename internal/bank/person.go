package bank

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Gender values accepted by NewPerson.
const (
	GenderFemale = "Female"
	GenderMale   = "Male"
)

// Socioeconomic rank bounds.
const (
	MinRank = 1
	MaxRank = 10
)

// Person is a bank customer. Name, gender and fingerprint are fixed at
// construction; age, rank and the alive flag may change.
type Person struct {
	id          uuid.UUID
	name        string
	age         int
	gender      string
	fingerprint Fingerprint
	rank        int
	alive       bool
}

// NewPerson validates gender and rank and stores only the digest of fingerprint.
func NewPerson(name string, age int, gender, fingerprint string, rank int, alive bool) (*Person, error) {
	if gender != GenderFemale && gender != GenderMale {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGender, gender)
	}
	if err := validateRank(rank); err != nil {
		return nil, err
	}
	if age < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAge, age)
	}
	return &Person{
		id:          uuid.New(),
		name:        name,
		age:         age,
		gender:      gender,
		fingerprint: HashFingerprint(fingerprint),
		rank:        rank,
		alive:       alive,
	}, nil
}

func validateRank(rank int) error {
	if rank < MinRank || rank > MaxRank {
		return fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	}
	return nil
}

func (p *Person) ID() uuid.UUID            { return p.id }
func (p *Person) Name() string             { return p.name }
func (p *Person) Age() int                 { return p.age }
func (p *Person) Gender() string           { return p.gender }
func (p *Person) Fingerprint() Fingerprint { return p.fingerprint }
func (p *Person) Rank() int                { return p.rank }
func (p *Person) Alive() bool              { return p.alive }

// VerifyFingerprint reports whether secret matches the stored fingerprint.
func (p *Person) VerifyFingerprint(secret string) bool {
	return p.fingerprint.Matches(secret)
}

// SetAge updates the age.
func (p *Person) SetAge(age int) error {
	if age < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAge, age)
	}
	p.age = age
	return nil
}

// SetRank updates the socioeconomic rank, which must stay within 1-10.
func (p *Person) SetRank(rank int) error {
	if err := validateRank(rank); err != nil {
		return err
	}
	p.rank = rank
	return nil
}

// SetAlive updates the alive flag.
func (p *Person) SetAlive(alive bool) {
	p.alive = alive
}

// Compare orders people by fingerprint digest.
func (p *Person) Compare(other *Person) int {
	return bytes.Compare(p.fingerprint[:], other.fingerprint[:])
}

// WriteInfo writes name, age, gender, fingerprint digest, rank and alive
// flag, one per line.
func (p *Person) WriteInfo(w io.Writer) error {
	return writeLines(w, p.name, p.age, p.gender, p.fingerprint, p.rank, boolDigit(p.alive))
}

// DumpInfo writes WriteInfo output to path. An empty path is a no-op.
func (p *Person) DumpInfo(path string) error {
	return dumpInfo(path, p.WriteInfo)
}
