package algebra

import (
	"fmt"
	"io"
	"strings"
)

// DefaultCellWidth is the cell width used by Format.
const DefaultCellWidth = 7

// Format renders m one row per line, each element centred in a cell:
//
//	|   1   |   0   |
//	|   0   |   1   |
func Format[T Number](m Matrix[T]) string {
	return FormatWidth(m, DefaultCellWidth)
}

// FormatWidth is Format with a custom cell width.
func FormatWidth[T Number](m Matrix[T], width int) string {
	var b strings.Builder
	for _, row := range m {
		for _, v := range row {
			b.WriteByte('|')
			b.WriteString(center(fmt.Sprint(v), width))
		}
		b.WriteString("|\n")
	}
	return b.String()
}

// Print writes Format(m) to w.
func Print[T Number](w io.Writer, m Matrix[T]) error {
	_, err := io.WriteString(w, Format(m))
	return err
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
