package algebra

import (
	"fmt"
	"strings"
)

// Op selects elementwise addition or subtraction in SumSub.
type Op int

const (
	OpSum Op = iota
	OpSub
)

func (op Op) String() string {
	switch op {
	case OpSum:
		return "sum"
	case OpSub:
		return "sub"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// ParseOp maps "sum" or "sub" to an Op.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(s) {
	case "sum":
		return OpSum, nil
	case "sub":
		return OpSub, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOp, s)
	}
}

// SumSub returns a+b or a-b. Both operands must have the same shape; two
// empty operands yield an empty matrix.
func SumSub[T Number](a, b Matrix[T], op Op) (Matrix[T], error) {
	if op != OpSum && op != OpSub {
		return nil, opErr(opSumSub, fmt.Errorf("%w: %v", ErrUnknownOp, op))
	}
	rows, cols, err := sameShape(a, b)
	if err != nil {
		return nil, opErr(opSumSub, err)
	}
	if rows == 0 {
		return Matrix[T]{}, nil
	}

	res := a.Clone()
	for i := range rows {
		for j := range cols {
			if op == OpSub {
				res[i][j] -= b[i][j]
			} else {
				res[i][j] += b[i][j]
			}
		}
	}
	return res, nil
}

// Add returns a+b.
func Add[T Number](a, b Matrix[T]) (Matrix[T], error) { return SumSub(a, b, OpSum) }

// Sub returns a-b.
func Sub[T Number](a, b Matrix[T]) (Matrix[T], error) { return SumSub(a, b, OpSub) }

// Scale multiplies every element of m by s. An empty matrix scales to an
// empty matrix.
func Scale[T Number](m Matrix[T], s T) Matrix[T] {
	if len(m) == 0 {
		return Matrix[T]{}
	}
	res := m.Clone()
	for i := range res {
		for j := range res[i] {
			res[i][j] *= s
		}
	}
	return res
}

// Multiply returns the matrix product a x b.
func Multiply[T Number](a, b Matrix[T]) (Matrix[T], error) {
	if len(a) == 0 && len(b) == 0 {
		return nil, opErr(opMultiply, ErrEmpty)
	}
	rowsA, colsA, err := shape(a)
	if err != nil {
		return nil, opErr(opMultiply, err)
	}
	rowsB, colsB, err := shape(b)
	if err != nil {
		return nil, opErr(opMultiply, err)
	}
	if rowsA == 0 || rowsB == 0 || colsA != rowsB {
		return nil, opErr(opMultiply, fmt.Errorf("%w: %dx%d x %dx%d", ErrDimensionMismatch, rowsA, colsA, rowsB, colsB))
	}

	res := filled[T](rowsA, colsB, 0)
	for i := range rowsA {
		for j := range colsB {
			for k := range colsA {
				res[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return res, nil
}

// Hadamard returns the elementwise product of a and b.
func Hadamard[T Number](a, b Matrix[T]) (Matrix[T], error) {
	rows, cols, err := sameShape(a, b)
	if err != nil {
		return nil, opErr(opHadamard, err)
	}
	if rows == 0 {
		return Matrix[T]{}, nil
	}

	res := filled[T](rows, cols, 0)
	for i := range rows {
		for j := range cols {
			res[i][j] = a[i][j] * b[i][j]
		}
	}
	return res, nil
}

// Transpose returns the transpose of m. An empty matrix transposes to an
// empty matrix.
func Transpose[T Number](m Matrix[T]) (Matrix[T], error) {
	rows, cols, err := shape(m)
	if err != nil {
		return nil, opErr(opTranspose, err)
	}
	if rows == 0 {
		return Matrix[T]{}, nil
	}

	res := filled[T](cols, rows, 0)
	for i := range rows {
		for j := range cols {
			res[j][i] = m[i][j]
		}
	}
	return res, nil
}

// Trace returns the sum of the main diagonal of a square matrix.
func Trace[T Number](m Matrix[T]) (T, error) {
	n, err := square(m)
	if err != nil {
		return 0, opErr(opTrace, err)
	}
	var sum T
	for i := range n {
		sum += m[i][i]
	}
	return sum, nil
}

func sameShape[T Number](a, b Matrix[T]) (rows, cols int, err error) {
	rowsA, colsA, err := shape(a)
	if err != nil {
		return 0, 0, err
	}
	rowsB, colsB, err := shape(b)
	if err != nil {
		return 0, 0, err
	}
	if rowsA != rowsB || colsA != colsB {
		return 0, 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, rowsA, colsA, rowsB, colsB)
	}
	return rowsA, colsA, nil
}
