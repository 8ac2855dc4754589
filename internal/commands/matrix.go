package commands

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/algebank/algebank/internal/algebra"
)

// inverseTolerance is the per-element slack allowed by inverse --check.
const inverseTolerance = 1e-9

var errInverseCheck = errors.New("inverse check failed: A*inverse(A) is not the identity")

type matrixFlags struct {
	repo   string
	csv    bool
	width  int
	loaded bool
}

// print renders m as CSV or as centred cells of the configured width.
func (f *matrixFlags) print(cmd *cobra.Command, m algebra.Matrix[float64]) error {
	out := cmd.OutOrStdout()
	if f.csv {
		return algebra.WriteCSV(out, m)
	}
	if err := f.load(); err != nil {
		return err
	}
	_, err := fmt.Fprint(out, algebra.FormatWidth(m, f.width))
	return err
}

func (f *matrixFlags) load() error {
	if f.loaded {
		return nil
	}
	absDir, err := filepath.Abs(f.repo)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	cfg, _, err := loadWorkspaceConfig(absDir)
	if err != nil {
		return err
	}
	f.width = cfg.Matrix.FormatWidth
	if f.width <= 0 {
		f.width = algebra.DefaultCellWidth
	}
	f.loaded = true
	return nil
}

func newMatrixCommand() *cobra.Command {
	flags := &matrixFlags{}

	matrixCmd := &cobra.Command{
		Use:   "matrix",
		Short: "Matrix algebra on CSV files",
	}
	matrixCmd.PersistentFlags().StringVar(&flags.repo, "repo", ".", "workspace directory for format settings")
	matrixCmd.PersistentFlags().BoolVar(&flags.csv, "csv", false, "print results as CSV")

	matrixCmd.AddCommand(newMatrixCreateCommand(flags))
	matrixCmd.AddCommand(newMatrixBinaryCommand(flags, "add", "Add two matrices", algebra.Add[float64]))
	matrixCmd.AddCommand(newMatrixBinaryCommand(flags, "sub", "Subtract B from A", algebra.Sub[float64]))
	matrixCmd.AddCommand(newMatrixBinaryCommand(flags, "mul", "Matrix product of A and B", algebra.Multiply[float64]))
	matrixCmd.AddCommand(newMatrixBinaryCommand(flags, "hadamard", "Elementwise product of A and B", algebra.Hadamard[float64]))
	matrixCmd.AddCommand(newMatrixScaleCommand(flags))
	matrixCmd.AddCommand(newMatrixUnaryCommand(flags, "transpose", "Transpose A", algebra.Transpose[float64]))
	matrixCmd.AddCommand(newMatrixUnaryCommand(flags, "adjugate", "Adjugate (transposed cofactor matrix) of A", algebra.Adjugate[float64]))
	matrixCmd.AddCommand(newMatrixTraceCommand())
	matrixCmd.AddCommand(newMatrixDetCommand())
	matrixCmd.AddCommand(newMatrixInverseCommand(flags))

	return matrixCmd
}

func newMatrixCreateCommand(flags *matrixFlags) *cobra.Command {
	var rows, cols int
	var kindName string
	var lower, upper float64
	var seed uint64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a zeros, ones, identity or random matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := algebra.ParseKind(kindName)
			if err != nil {
				return err
			}
			opts := []algebra.CreateOption[float64]{algebra.WithBounds(lower, upper)}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, algebra.WithRand[float64](rand.New(rand.NewPCG(seed, seed))))
			}
			m, err := algebra.Create[float64](rows, cols, kind, opts...)
			if err != nil {
				return err
			}
			return flags.print(cmd, m)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 0, "number of rows (required)")
	cmd.Flags().IntVar(&cols, "cols", 0, "number of columns (required)")
	_ = cmd.MarkFlagRequired("rows")
	_ = cmd.MarkFlagRequired("cols")
	cmd.Flags().StringVar(&kindName, "kind", "zeros", "zeros, ones, identity or random")
	cmd.Flags().Float64Var(&lower, "lower", 0, "lower bound for random entries")
	cmd.Flags().Float64Var(&upper, "upper", 1, "upper bound for random entries")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for random entries")

	return cmd
}

type binaryOp func(a, b algebra.Matrix[float64]) (algebra.Matrix[float64], error)

type unaryOp func(m algebra.Matrix[float64]) (algebra.Matrix[float64], error)

func newMatrixBinaryCommand(flags *matrixFlags, name, short string, op binaryOp) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <A.csv> <B.csv>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			b, err := readMatrix(args[1])
			if err != nil {
				return err
			}
			m, err := op(a, b)
			if err != nil {
				return err
			}
			return flags.print(cmd, m)
		},
	}
}

func newMatrixUnaryCommand(flags *matrixFlags, name, short string, op unaryOp) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <A.csv>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			m, err := op(a)
			if err != nil {
				return err
			}
			return flags.print(cmd, m)
		},
	}
}

func newMatrixScaleCommand(flags *matrixFlags) *cobra.Command {
	var by float64

	cmd := &cobra.Command{
		Use:   "scale <A.csv>",
		Short: "Multiply every element of A by a scalar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			return flags.print(cmd, algebra.Scale(a, by))
		},
	}

	cmd.Flags().Float64Var(&by, "by", 1, "scalar factor")
	return cmd
}

func newMatrixTraceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <A.csv>",
		Short: "Sum of the main diagonal of A",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			tr, err := algebra.Trace(a)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatScalar(tr))
			return nil
		},
	}
}

func newMatrixDetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "det <A.csv>",
		Short: "Determinant of A by cofactor expansion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			d, err := algebra.Determinant(a)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatScalar(d))
			return nil
		},
	}
}

func newMatrixInverseCommand(flags *matrixFlags) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "inverse <A.csv>",
		Short: "Inverse of A as adjugate over determinant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			inv, err := algebra.Inverse(a)
			if err != nil {
				return err
			}
			if err := flags.print(cmd, inv); err != nil {
				return err
			}
			if !check {
				return nil
			}

			prod, err := algebra.Multiply(a, inv)
			if err != nil {
				return err
			}
			id, err := algebra.Create[float64](a.Rows(), a.Rows(), algebra.Identity)
			if err != nil {
				return err
			}
			if !algebra.ApproxEqual(prod, id, inverseTolerance) {
				return errInverseCheck
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "check: A*inverse(A) = I")
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "verify that A*inverse(A) is the identity")
	return cmd
}

func readMatrix(path string) (algebra.Matrix[float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening matrix: %w", err)
	}
	defer f.Close()

	m, err := algebra.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func formatScalar(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
