// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset parses whitespace-delimited .dat records, removes
// duplicate rows, and computes the salary summary written as a CSV footer.
// Every function here is pure apart from reading the supplied io.Reader.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/dat2csv/pkg/types"
)

// maxLineSize bounds a single .dat line. bufio.Scanner's 64 KiB default is
// too small for files with long title columns.
const maxLineSize = 1 << 20

// ParseLine splits line on runs of whitespace and rebuilds it into a record
// of layout.Width() fields. The leading and trailing tokens are kept as-is
// and the tokens between them become one space-joined title (empty when the
// line has exactly Width tokens). It returns false for lines with fewer
// than Width tokens.
func ParseLine(line string, layout types.Layout) (types.Record, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < layout.Width() {
		return nil, false
	}

	titleEnd := len(tokens) - layout.Trailing
	rec := make(types.Record, 0, layout.Width())
	rec = append(rec, tokens[:layout.Leading]...)
	rec = append(rec, strings.Join(tokens[layout.Leading:titleEnd], " "))
	rec = append(rec, tokens[titleEnd:]...)
	return rec, true
}

// Read parses every line of r with ParseLine and returns the accepted
// records in input order. Short lines are dropped without error; only read
// failures are returned.
func Read(r io.Reader, layout types.Layout) ([]types.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []types.Record
	for sc.Scan() {
		if rec, ok := ParseLine(sc.Text(), layout); ok {
			records = append(records, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return records, fmt.Errorf("reading records: %w", err)
	}
	return records, nil
}

// Split separates parsed records into a Dataset: the first record is the
// header, the rest are data rows. An empty slice yields an empty Dataset,
// which is not Valid.
func Split(records []types.Record) types.Dataset {
	if len(records) == 0 {
		return types.Dataset{}
	}
	return types.Dataset{Header: records[0], Rows: records[1:]}
}
