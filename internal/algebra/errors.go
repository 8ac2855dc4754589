package algebra

import (
	"errors"
	"fmt"
)

// Sentinel errors. Exported operations wrap them with an operation tag, so
// callers match with errors.Is.
var (
	ErrBadShape          = errors.New("algebra: matrix dimensions must be positive")
	ErrNonSquare         = errors.New("algebra: matrix is not square")
	ErrDimensionMismatch = errors.New("algebra: matrix dimension mismatch")
	ErrEmpty             = errors.New("algebra: matrix must not be empty")
	ErrInvalidBounds     = errors.New("algebra: invalid bounds for random matrix")
	ErrSingular          = errors.New("algebra: singular matrix")
	ErrRagged            = errors.New("algebra: rows have differing lengths")
	ErrUnknownOp         = errors.New("algebra: unknown operation")
	ErrUnknownKind       = errors.New("algebra: unknown matrix kind")
	ErrIndexOutOfRange   = errors.New("algebra: row or column index out of range")
)

const (
	opCreate    = "Create"
	opMinor     = "Minor"
	opSumSub    = "SumSub"
	opMultiply  = "Multiply"
	opHadamard  = "Hadamard"
	opTranspose = "Transpose"
	opTrace     = "Trace"
	opDet       = "Determinant"
	opAdjugate  = "Adjugate"
	opInverse   = "Inverse"
)

func opErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
