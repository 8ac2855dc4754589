// Package algebra implements dense matrix algebra over nested slices.
//
// Determinant, adjugate and inverse use recursive cofactor expansion. That is
// exponential in the matrix order and only suitable for small matrices.
package algebra

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/exp/constraints"
)

// Number is the element type constraint for a Matrix.
type Number interface {
	constraints.Integer | constraints.Float
}

// Matrix is a rectangular row-major matrix. Every row has the same length.
type Matrix[T Number] [][]T

// Kind selects how Create fills a new matrix.
type Kind int

const (
	Zeros Kind = iota
	Ones
	Identity
	Random
)

var kindNames = map[Kind]string{
	Zeros:    "zeros",
	Ones:     "ones",
	Identity: "identity",
	Random:   "random",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps "zeros", "ones", "identity" or "random" to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type createOptions[T Number] struct {
	lower, upper T
	rng          *rand.Rand
}

// CreateOption configures Create.
type CreateOption[T Number] func(*createOptions[T])

// WithBounds sets the sampling interval for Random matrices. Defaults to [0, 1).
func WithBounds[T Number](lower, upper T) CreateOption[T] {
	return func(o *createOptions[T]) {
		o.lower = lower
		o.upper = upper
	}
}

// WithRand sets the random source for Random matrices.
func WithRand[T Number](r *rand.Rand) CreateOption[T] {
	return func(o *createOptions[T]) {
		o.rng = r
	}
}

// Create allocates a rows x cols matrix of the given kind.
//
// Random only populates the main diagonal, with values drawn uniformly from
// [lower, upper) and converted to T. Every other entry is zero.
func Create[T Number](rows, cols int, kind Kind, opts ...CreateOption[T]) (Matrix[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, opErr(opCreate, ErrBadShape)
	}

	o := createOptions[T]{lower: 0, upper: 1}
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case Zeros:
		return filled[T](rows, cols, 0), nil
	case Ones:
		return filled[T](rows, cols, 1), nil
	case Identity:
		if rows != cols {
			return nil, opErr(opCreate, ErrNonSquare)
		}
		m := filled[T](rows, cols, 0)
		for i := range rows {
			m[i][i] = 1
		}
		return m, nil
	case Random:
		if o.lower >= o.upper {
			return nil, opErr(opCreate, ErrInvalidBounds)
		}
		rng := o.rng
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		m := filled[T](rows, cols, 0)
		lo, hi := float64(o.lower), float64(o.upper)
		for i := range min(rows, cols) {
			m[i][i] = T(lo + rng.Float64()*(hi-lo))
		}
		return m, nil
	default:
		return nil, opErr(opCreate, fmt.Errorf("%w: %v", ErrUnknownKind, kind))
	}
}

func filled[T Number](rows, cols int, v T) Matrix[T] {
	m := make(Matrix[T], rows)
	for i := range m {
		row := make([]T, cols)
		if v != 0 {
			for j := range row {
				row[j] = v
			}
		}
		m[i] = row
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix[T]) Rows() int { return len(m) }

// Cols returns the number of columns, or 0 for an empty matrix.
func (m Matrix[T]) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// IsSquare reports whether m is non-empty with as many rows as columns.
func (m Matrix[T]) IsSquare() bool {
	return len(m) > 0 && len(m) == len(m[0])
}

// Clone returns a deep copy of m.
func (m Matrix[T]) Clone() Matrix[T] {
	if m == nil {
		return nil
	}
	out := make(Matrix[T], len(m))
	for i, row := range m {
		out[i] = append([]T(nil), row...)
	}
	return out
}

// shape returns the dimensions of m, rejecting ragged rows.
func shape[T Number](m Matrix[T]) (rows, cols int, err error) {
	if len(m) == 0 {
		return 0, 0, nil
	}
	cols = len(m[0])
	for _, row := range m[1:] {
		if len(row) != cols {
			return 0, 0, ErrRagged
		}
	}
	return len(m), cols, nil
}

// square validates that m is non-empty, rectangular and square, returning its order.
func square[T Number](m Matrix[T]) (int, error) {
	rows, cols, err := shape(m)
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, ErrEmpty
	}
	if rows != cols {
		return 0, ErrNonSquare
	}
	return rows, nil
}

// Convert returns m with every element converted to U.
func Convert[U, T Number](m Matrix[T]) Matrix[U] {
	if len(m) == 0 {
		return Matrix[U]{}
	}
	out := make(Matrix[U], len(m))
	for i, row := range m {
		out[i] = make([]U, len(row))
		for j, v := range row {
			out[i][j] = U(v)
		}
	}
	return out
}

// Equal reports whether a and b have the same shape and elements.
func Equal[T Number](a, b Matrix[T]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// ApproxEqual reports whether a and b have the same shape and every pair of
// elements differs by at most eps.
func ApproxEqual(a, b Matrix[float64], eps float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			d := a[i][j] - b[i][j]
			if d < -eps || d > eps {
				return false
			}
		}
	}
	return true
}
