package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dat2csv/internal/convert"
	"github.com/pdiddy/dat2csv/internal/index"
	"github.com/pdiddy/dat2csv/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert every .dat file in the input directory to CSV",
	Long: `Convert processes each .dat file in the input directory in name order.
Files whose header does not start with "id" are skipped without a message.
Each converted file is written as <name>.csv in the output directory, which
is created if needed.

A file that fails (non-numeric salary, fewer than two rows) is reported and
the batch continues; --fail-fast stops at the first failure instead.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("input-dir", "input", "directory containing .dat files")
	convertCmd.Flags().String("output-dir", "output", "directory for generated .csv files")
	convertCmd.Flags().String("salary-column", string(types.SalarySecondToLast), "salary field: second-to-last or last")
	convertCmd.Flags().Bool("fail-fast", false, "stop the batch at the first failing file")
	convertCmd.Flags().String("report", "", "write a run report to this path (.yaml or .json)")
	convertCmd.Flags().Bool("index", false, "record each summary in the summary index")
	convertCmd.Flags().String("index-dir", "index", "directory for the summary index")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd.Flags(), map[string]string{
		"input_dir":     "input-dir",
		"output_dir":    "output-dir",
		"salary_column": "salary-column",
		"fail_fast":     "fail-fast",
		"report":        "report",
		"index":         "index",
		"index_dir":     "index-dir",
	}); err != nil {
		return err
	}

	cfg := convertConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	var rec convert.Recorder
	if viper.GetBool("index") {
		store, err := index.NewStore(indexConfig())
		if err != nil {
			return err
		}
		defer store.Close()
		rec = store
	}

	result, err := convert.ConvertDir(cmd.Context(), cfg, rec, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}

// convertConfig collects the convert settings from viper.
func convertConfig() types.ConvertConfig {
	return types.ConvertConfig{
		InputDir:     viper.GetString("input_dir"),
		OutputDir:    viper.GetString("output_dir"),
		SalaryColumn: types.SalaryColumn(viper.GetString("salary_column")),
		FailFast:     viper.GetBool("fail_fast"),
		ReportPath:   viper.GetString("report"),
		Layout: types.Layout{
			Leading:  viper.GetInt("layout.leading"),
			Trailing: viper.GetInt("layout.trailing"),
		},
	}
}

// indexConfig collects the summary index settings from viper.
func indexConfig() types.IndexConfig {
	return types.IndexConfig{
		IndexDir:   viper.GetString("index_dir"),
		MaxResults: viper.GetInt("max_results"),
	}
}
