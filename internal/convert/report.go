// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dat2csv/pkg/types"
)

// Report is the on-disk record of one convert run.
type Report struct {
	InputDir  string             `json:"input_dir" yaml:"input_dir"`
	OutputDir string             `json:"output_dir" yaml:"output_dir"`
	Converted int                `json:"converted" yaml:"converted"`
	Skipped   int                `json:"skipped" yaml:"skipped"`
	Failed    int                `json:"failed" yaml:"failed"`
	Files     []types.FileResult `json:"files" yaml:"files"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
}

// NewReport builds a Report from a finished batch.
func NewReport(cfg types.ConvertConfig, r BatchResult) Report {
	return Report{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Converted: r.Converted,
		Skipped:   r.Skipped,
		Failed:    r.Failed,
		Files:     r.Files,
		Timestamp: time.Now().UTC(),
	}
}

// WriteReport writes rep to path as JSON when the extension is .json and as
// YAML otherwise.
func WriteReport(path string, rep Report) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(rep, "", "  ")
	default:
		data, err = yaml.Marshal(&rep)
	}
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading report: %w", err)
	}

	var rep Report
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &rep)
	} else {
		err = yaml.Unmarshal(data, &rep)
	}
	if err != nil {
		return Report{}, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return rep, nil
}
