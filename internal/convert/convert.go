// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns every .dat file of an input directory into a CSV
// with a salary summary footer. Files are processed one at a time: parse,
// validate header, dedupe, summarize, write, report.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/dat2csv/internal/csvfile"
	"github.com/pdiddy/dat2csv/internal/dataset"
	"github.com/pdiddy/dat2csv/pkg/types"
)

const (
	inputExt  = ".dat"
	outputExt = ".csv"
)

// Recorder receives the result of every converted file. The summary index
// implements it; a nil Recorder is allowed.
type Recorder interface {
	Record(ctx context.Context, res types.FileResult) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
	Files     []types.FileResult
}

// Total returns the total number of input files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ListInputs returns the paths of regular entries in dir whose name ends in
// .dat, in name order.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), inputExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// OutputPath maps an input file to its CSV in outputDir: name.dat becomes
// outputDir/name.csv.
func OutputPath(inputPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), inputExt)
	return filepath.Join(outputDir, base+outputExt)
}

// ConvertFile converts one .dat file. A file whose header does not start
// with "id" (or that has no records) is skipped: the result has Skipped set
// and no output is written. Aggregation and I/O failures are returned.
func ConvertFile(path string, cfg types.ConvertConfig) (types.FileResult, error) {
	res := types.FileResult{Input: path}

	ds, err := readDataset(path, cfg.EffectiveLayout())
	if err != nil {
		return res, err
	}
	if !ds.Valid() {
		res.Skipped = true
		res.Finished = time.Now().UTC()
		return res, nil
	}

	rows, dropped := dataset.DeduplicateCount(ds.Rows)
	res.Rows = len(rows)
	res.Duplicates = dropped

	summary, err := dataset.Summarize(rows, cfg.SalaryColumn)
	if err != nil {
		return res, fmt.Errorf("summarizing %s: %w", path, err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return res, fmt.Errorf("creating output directory: %w", err)
	}
	out := OutputPath(path, cfg.OutputDir)
	if err := csvfile.WriteFile(out, ds.Header, rows, summary); err != nil {
		return res, err
	}

	res.Output = out
	res.Summary = &summary
	res.Finished = time.Now().UTC()
	return res, nil
}

func readDataset(path string, layout types.Layout) (types.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := dataset.Read(f, layout)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return dataset.Split(records), nil
}

// ConvertDir converts every .dat file in cfg.InputDir, printing one line per
// converted or failed file to w and a batch summary at the end. Skipped
// files print nothing.
//
// Without FailFast a failing file is counted and the batch moves on; with
// FailFast the first failure stops the batch and is returned. Outputs
// written before the failure stay on disk. rec may be nil.
func ConvertDir(ctx context.Context, cfg types.ConvertConfig, rec Recorder, w io.Writer) (BatchResult, error) {
	var result BatchResult

	if err := cfg.Validate(); err != nil {
		return result, err
	}

	inputs, err := ListInputs(cfg.InputDir)
	if err != nil {
		return result, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}

	for _, path := range inputs {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		name := filepath.Base(path)
		slog.Debug("converting", slog.String("input", path))

		res, err := ConvertFile(path, cfg)
		if err != nil {
			res.Error = err.Error()
			res.Finished = time.Now().UTC()
			result.Failed++
			result.Files = append(result.Files, res)
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			if cfg.FailFast {
				finish(cfg, &result, w)
				return result, fmt.Errorf("converting %s: %w", name, err)
			}
			continue
		}

		result.Files = append(result.Files, res)
		if res.Skipped {
			slog.Debug("skipped: header does not start with id", slog.String("input", path))
			result.Skipped++
			continue
		}

		result.Converted++
		fmt.Fprintf(w, "Processed %s and saved to %s\n", name, res.Output)

		if rec != nil {
			if err := rec.Record(ctx, res); err != nil {
				fmt.Fprintf(w, "warning: indexing %s failed: %v\n", name, err)
			}
		}
	}

	finish(cfg, &result, w)
	return result, nil
}

// finish prints the batch summary and writes the run report, if configured.
func finish(cfg types.ConvertConfig, result *BatchResult, w io.Writer) {
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())

	if cfg.ReportPath == "" {
		return
	}
	if err := WriteReport(cfg.ReportPath, NewReport(cfg, *result)); err != nil {
		fmt.Fprintf(w, "warning: report write failed: %v\n", err)
	}
}
