package bank

import (
	"fmt"
	"io"
	"os"
)

func writeLines(w io.Writer, values ...any) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return fmt.Errorf("writing info: %w", err)
		}
	}
	return nil
}

func dumpInfo(path string, write func(io.Writer) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("opening info file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}
