package types

import (
	"errors"
	"fmt"
)

// ConvertConfig holds settings for the convert stage.
type ConvertConfig struct {
	// InputDir is the directory scanned for .dat files.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir receives one .csv per processed input. It is created if absent.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Layout is the column-reconstruction rule. The zero value means DefaultLayout.
	Layout Layout `json:"layout" yaml:"layout"`

	// SalaryColumn selects the salary field (default second-to-last).
	SalaryColumn SalaryColumn `json:"salary_column" yaml:"salary_column"`

	// FailFast aborts the batch on the first failing file instead of
	// recording the failure and moving on.
	FailFast bool `json:"fail_fast" yaml:"fail_fast"`

	// ReportPath, when set, receives a YAML or JSON run report.
	ReportPath string `json:"report,omitempty" yaml:"report,omitempty"`
}

// EffectiveLayout returns Layout, or DefaultLayout when Layout is unset.
func (c ConvertConfig) EffectiveLayout() Layout {
	if c.Layout == (Layout{}) {
		return DefaultLayout
	}
	return c.Layout
}

// Validate checks that the directories are set and the salary column is known.
func (c ConvertConfig) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.SalaryColumn.Offset() == 0 {
		return fmt.Errorf("unknown salary column %q: use %q or %q",
			c.SalaryColumn, SalarySecondToLast, SalaryLast)
	}
	l := c.EffectiveLayout()
	if l.Leading < 1 || l.Trailing < c.SalaryColumn.Offset() {
		return fmt.Errorf("layout %d+title+%d cannot hold an id and a %s salary column",
			l.Leading, l.Trailing, c.SalaryColumn)
	}
	return nil
}

// IndexConfig holds settings for the summary index.
type IndexConfig struct {
	// IndexDir is the directory holding summaries.db and its exports.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of listed summaries (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
