// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the dat2csv pipeline:
// parsed records, the column layout used to rebuild them, per-file
// summaries, and the configuration passed into each stage.
package types

import "time"

// Record is one parsed row of a .dat file. Fields are positional:
// id, three fixed columns, a space-joined title, and two trailing columns.
type Record []string

// ID returns the dedup key of the record (its first field), or "" for an
// empty record.
func (r Record) ID() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Layout is the column-reconstruction rule for a .dat line. The first
// Leading tokens and the last Trailing tokens are kept as-is; everything in
// between is joined with single spaces into one title field.
type Layout struct {
	Leading  int `json:"leading" yaml:"leading"`
	Trailing int `json:"trailing" yaml:"trailing"`
}

// DefaultLayout is the shape of every .dat record: four leading columns,
// a variable-width title, and two trailing columns.
var DefaultLayout = Layout{Leading: 4, Trailing: 2}

// Width is the number of fields in a reconstructed record. It is also the
// minimum number of tokens a line needs to be accepted.
func (l Layout) Width() int {
	return l.Leading + 1 + l.Trailing
}

// TitleIndex is the position of the joined title field.
func (l Layout) TitleIndex() int {
	return l.Leading
}

// HeaderKey is the first header field that marks a .dat file as processable.
const HeaderKey = "id"

// Dataset holds the records of one input file. Header is the first parsed
// row; Rows are the data rows that follow it.
type Dataset struct {
	Header Record
	Rows   []Record
}

// Valid reports whether the dataset has a header whose first field is
// HeaderKey. Files with an invalid header are skipped.
func (d Dataset) Valid() bool {
	return d.Header.ID() == HeaderKey
}

// SalaryColumn selects which trailing field holds the salary.
type SalaryColumn string

const (
	// SalarySecondToLast reads the salary from the field before the last one.
	SalarySecondToLast SalaryColumn = "second-to-last"
	// SalaryLast reads the salary from the final field.
	SalaryLast SalaryColumn = "last"
)

// Offset returns the distance of the salary field from the end of a record
// (1 for the last field), or 0 for an unknown column.
func (c SalaryColumn) Offset() int {
	switch c {
	case SalaryLast:
		return 1
	case SalarySecondToLast, "":
		return 2
	default:
		return 0
	}
}

// Summary holds the footer statistics of one output file.
type Summary struct {
	// SecondHighest is the salary at rank 1 of a descending sort. Equal top
	// salaries are not collapsed.
	SecondHighest int `json:"second_highest" yaml:"second_highest"`

	// Average is the mean salary rounded to two decimal places.
	Average float64 `json:"average" yaml:"average"`
}

// FileResult describes what happened to one input file.
type FileResult struct {
	Input      string    `json:"input" yaml:"input"`
	Output     string    `json:"output,omitempty" yaml:"output,omitempty"`
	Skipped    bool      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Rows       int       `json:"rows" yaml:"rows"`
	Duplicates int       `json:"duplicates" yaml:"duplicates"`
	Summary    *Summary  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	Finished   time.Time `json:"finished" yaml:"finished"`
}
