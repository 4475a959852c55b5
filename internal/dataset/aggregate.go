// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/pdiddy/dat2csv/pkg/types"
)

// ErrTooFewRecords is returned by Summarize when fewer than two rows remain,
// so there is no second-highest salary.
var ErrTooFewRecords = errors.New("at least 2 records are needed for a salary summary")

// SalaryError reports a salary field that is not an integer.
type SalaryError struct {
	ID    string
	Value string
	Err   error
}

func (e *SalaryError) Error() string {
	return fmt.Sprintf("record %q: salary %q is not an integer", e.ID, e.Value)
}

func (e *SalaryError) Unwrap() error { return e.Err }

// Salaries extracts the salary column of each record as an integer.
func Salaries(records []types.Record, col types.SalaryColumn) ([]int, error) {
	offset := col.Offset()
	if offset == 0 {
		return nil, fmt.Errorf("unknown salary column %q", col)
	}

	salaries := make([]int, len(records))
	for i, r := range records {
		if len(r) < offset {
			return nil, &SalaryError{ID: r.ID(), Err: fmt.Errorf("record has %d fields", len(r))}
		}
		v := r[len(r)-offset]
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &SalaryError{ID: r.ID(), Value: v, Err: err}
		}
		salaries[i] = n
	}
	return salaries, nil
}

// Summarize computes the second-highest and average salary of records.
// Second-highest is rank 1 of a descending sort, so two equal top salaries
// yield that salary. The average is rounded to two decimals, half away
// from zero.
func Summarize(records []types.Record, col types.SalaryColumn) (types.Summary, error) {
	salaries, err := Salaries(records, col)
	if err != nil {
		return types.Summary{}, err
	}
	if len(salaries) < 2 {
		return types.Summary{}, fmt.Errorf("%w: have %d", ErrTooFewRecords, len(salaries))
	}

	sort.Sort(sort.Reverse(sort.IntSlice(salaries)))

	var total float64
	for _, s := range salaries {
		total += float64(s)
	}

	return types.Summary{
		SecondHighest: salaries[1],
		Average:       Round2(total / float64(len(salaries))),
	}, nil
}

// Round2 rounds v to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
