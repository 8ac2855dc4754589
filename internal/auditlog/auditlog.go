// Package auditlog records executed scenario steps in an append-only CSV file.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Header is the CSV header for bank-log.csv.
const Header = "timestamp,scenario,step,op,outcome,details"

// File is the log path relative to the workspace root.
const File = "logs/bank-log.csv"

var columns = strings.Split(Header, ",")

// Entry is one row in the bank log.
type Entry struct {
	Timestamp time.Time
	Scenario  string
	Step      int
	Op        string
	Outcome   string
	Details   string
}

// Record renders e as a CSV record in Header order.
func (e Entry) Record() []string {
	return []string{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Scenario,
		strconv.Itoa(e.Step),
		e.Op,
		e.Outcome,
		e.Details,
	}
}

// ParseRecord is the inverse of Entry.Record.
func ParseRecord(rec []string) (Entry, error) {
	if len(rec) != len(columns) {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", len(columns), len(rec))
	}
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", rec[0], err)
	}
	step, err := strconv.Atoi(rec[2])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing step %q: %w", rec[2], err)
	}
	return Entry{Timestamp: ts, Scenario: rec[1], Step: step, Op: rec[3], Outcome: rec[4], Details: rec[5]}, nil
}

// Append adds entries to <root>/logs/bank-log.csv. The header is written
// whenever the file is empty, including one left behind by an earlier crash.
func Append(root string, entries []Entry) error {
	path := filepath.Join(root, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening bank log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat bank log: %w", err)
	}

	werr := writeEntries(f, info.Size() == 0, entries)
	if cerr := f.Close(); werr == nil && cerr != nil {
		return fmt.Errorf("closing bank log: %w", cerr)
	}
	return werr
}

func writeEntries(w io.Writer, withHeader bool, entries []Entry) error {
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(columns); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(e.Record()); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/bank-log.csv, or nil if the log
// has not been written yet.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, File))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening bank log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(columns)

	head, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading bank log header: %w", err)
	}
	if !slices.Equal(head, columns) {
		return nil, fmt.Errorf("unexpected bank log header %q", strings.Join(head, ","))
	}

	var entries []Entry
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading bank log CSV: %w", err)
		}
		e, err := ParseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		entries = append(entries, e)
	}
}
