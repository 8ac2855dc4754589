// Package card generates and parses account credentials: account numbers,
// CVV2 codes and YY-MM expiration dates.
//
// Generation uses math/rand/v2. Values are not secret and are not checked
// for uniqueness.
package card

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	// NumberLength is the length of an account number.
	NumberLength = 16
	// CVV2Length is the length of a CVV2 code.
	CVV2Length = 4

	digits = "0123456789"
)

// Digits returns n characters sampled uniformly from 0-9.
func Digits(r *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(digits[r.IntN(len(digits))])
	}
	return b.String()
}

// Expiry is a card expiration date with a two-digit year.
type Expiry struct {
	Year  int // 0-99
	Month int // 1-12
}

// String formats e as "YY-MM".
func (e Expiry) String() string {
	return FormatExpiry(e.Year, e.Month)
}

// FormatExpiry returns an expiration like "07-03".
func FormatExpiry(year, month int) string {
	return fmt.Sprintf("%02d-%02d", year, month)
}

// ParseExpiry parses "YY-MM". Both fields must be exactly two digits.
func ParseExpiry(s string) (Expiry, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 || !twoDigits(parts[0]) || !twoDigits(parts[1]) {
		return Expiry{}, fmt.Errorf("invalid expiry format: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Expiry{}, fmt.Errorf("invalid year in expiry %q: %w", s, err)
	}
	if year < 0 || year > 99 {
		return Expiry{}, fmt.Errorf("year %d out of range in expiry %q", year, s)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Expiry{}, fmt.Errorf("invalid month in expiry %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return Expiry{}, fmt.Errorf("month %d out of range in expiry %q", month, s)
	}

	return Expiry{Year: year, Month: month}, nil
}

func twoDigits(s string) bool {
	return len(s) == 2 && strings.ContainsRune(digits, rune(s[0])) && strings.ContainsRune(digits, rune(s[1]))
}

// RandomExpiry returns a year in 00-99 and a month in 01-12.
func RandomExpiry(r *rand.Rand) Expiry {
	return Expiry{Year: r.IntN(100), Month: 1 + r.IntN(12)}
}

// Compare returns -1, 0 or +1 as e is before, equal to or after other.
func (e Expiry) Compare(other Expiry) int {
	a, b := e.Year*12+e.Month, other.Year*12+other.Month
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// After reports whether e is strictly later than other.
func (e Expiry) After(other Expiry) bool {
	return e.Compare(other) > 0
}
