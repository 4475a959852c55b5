// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvfile writes deduplicated records as CSV with a summary footer,
// and reads such files back.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/dat2csv/pkg/types"
)

const (
	secondHighestLabel = "Second Highest Salary = "
	averageLabel       = "Average Salary = "
)

// Footer returns the two cells of the summary row.
func Footer(s types.Summary) []string {
	return []string{
		secondHighestLabel + strconv.Itoa(s.SecondHighest),
		averageLabel + FormatAverage(s.Average),
	}
}

// FormatAverage renders v in its shortest decimal form with at least one
// fractional digit: 40000 becomes "40000.0", 41666.67 stays "41666.67".
func FormatAverage(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Write emits header, rows, a blank row, and the summary footer to w.
// Fields are quoted per RFC 4180 and rows end in CRLF.
func Write(w io.Writer, header types.Record, rows []types.Record, s types.Summary) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("writing row %q: %w", r.ID(), err)
		}
	}
	if err := cw.Write(nil); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}
	if err := cw.Write(Footer(s)); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile creates or truncates path and writes the CSV to it. The file is
// closed on every path; a close failure is reported if nothing failed first.
func WriteFile(path string, header types.Record, rows []types.Record, s types.Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := Write(f, header, rows, s); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Table is the content of a CSV written by Write.
type Table struct {
	Header types.Record
	Rows   []types.Record
	Footer []string
}

// ErrNoFooter is returned by Table.Summary when the footer is missing or
// does not carry the expected labels.
var ErrNoFooter = errors.New("csv has no summary footer")

// Summary parses the footer cells back into a Summary.
func (t Table) Summary() (types.Summary, error) {
	if len(t.Footer) != 2 ||
		!strings.HasPrefix(t.Footer[0], secondHighestLabel) ||
		!strings.HasPrefix(t.Footer[1], averageLabel) {
		return types.Summary{}, ErrNoFooter
	}

	second, err := strconv.Atoi(strings.TrimPrefix(t.Footer[0], secondHighestLabel))
	if err != nil {
		return types.Summary{}, fmt.Errorf("parsing second highest salary: %w", err)
	}
	avg, err := strconv.ParseFloat(strings.TrimPrefix(t.Footer[1], averageLabel), 64)
	if err != nil {
		return types.Summary{}, fmt.Errorf("parsing average salary: %w", err)
	}
	return types.Summary{SecondHighest: second, Average: avg}, nil
}

// Read parses a CSV produced by Write. The blank separator row is skipped
// by encoding/csv, so the footer is recognised as the last record when it
// has the summary labels.
func Read(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	t := Table{Header: records[0]}
	body := records[1:]
	if n := len(body); n > 0 {
		last := body[n-1]
		if len(last) == 2 && strings.HasPrefix(last[0], secondHighestLabel) {
			t.Footer = last
			body = body[:n-1]
		}
	}
	for _, rec := range body {
		t.Rows = append(t.Rows, types.Record(rec))
	}
	return t, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
