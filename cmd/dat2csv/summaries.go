// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dat2csv/internal/csvfile"
	"github.com/pdiddy/dat2csv/internal/index"
)

var summariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "Inspect the summary index (list, export, rebuild)",
	Long: `Summaries manages the SQLite index of per-file salary summaries filled by
"convert --index". Use subcommands to list entries, export them, or rebuild
the index from the footers of existing CSV files.`,
}

// --- list subcommand ---

var summariesListCmd = &cobra.Command{
	Use:   "list [input-filter]",
	Short: "List indexed summaries, most recent first",
	RunE:  runSummariesList,
}

func runSummariesList(cmd *cobra.Command, args []string) error {
	store, err := openIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	opts := index.ListOptions{MaxResults: limit}
	if len(args) > 0 {
		opts.Input = args[0]
	}

	entries, err := store.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatEntries(os.Stdout, entries, jsonOutput)
}

func formatEntries(w io.Writer, entries []index.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No summaries indexed.")
		return nil
	}

	fmt.Fprintf(w, "%-30s  %6s  %5s  %14s  %14s  %s\n",
		"Input", "Rows", "Dups", "Second Highest", "Average", "Converted")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, e := range entries {
		input := e.Input
		if len(input) > 30 {
			input = "..." + input[len(input)-27:]
		}
		fmt.Fprintf(w, "%-30s  %6d  %5d  %14d  %14s  %s\n",
			input, e.Rows, e.Duplicates, e.SecondHighest,
			csvfile.FormatAverage(e.Average), e.ConvertedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Fprintf(w, "\n%d summaries\n", len(entries))
	return nil
}

// --- export subcommand ---

var summariesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the summary index to YAML or JSON",
	RunE:  runSummariesExport,
}

func runSummariesExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), index.ListOptions{})
	case "json":
		path, err = store.ExportJSON(cmd.Context(), index.ListOptions{})
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

// --- rebuild subcommand ---

var summariesRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-index the footers of the CSV files in an output directory",
	RunE:  runSummariesRebuild,
}

func runSummariesRebuild(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd.Flags(), map[string]string{
		"input_dir":  "input-dir",
		"output_dir": "output-dir",
	}); err != nil {
		return err
	}

	store, err := openIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Rebuild(cmd.Context(),
		viper.GetString("input_dir"), viper.GetString("output_dir"), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- shared helpers ---

func openIndex(cmd *cobra.Command) (*index.Store, error) {
	if err := bindFlags(cmd.Flags(), map[string]string{
		"index_dir":   "index-dir",
		"max_results": "max-results",
	}); err != nil {
		return nil, err
	}
	return index.NewStore(indexConfig())
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	summariesCmd.PersistentFlags().String("index-dir", "index", "directory holding summaries.db")
	summariesCmd.PersistentFlags().Int("max-results", 50, "default maximum number of listed summaries")

	summariesListCmd.Flags().Int("limit", 0, "maximum entries (0 = use default)")
	summariesListCmd.Flags().Bool("json", false, "output entries as JSON")

	summariesExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	summariesRebuildCmd.Flags().String("input-dir", "input", "directory the .dat inputs came from")
	summariesRebuildCmd.Flags().String("output-dir", "output", "directory containing generated .csv files")

	summariesCmd.AddCommand(summariesListCmd)
	summariesCmd.AddCommand(summariesExportCmd)
	summariesCmd.AddCommand(summariesRebuildCmd)

	rootCmd.AddCommand(summariesCmd)
}
