// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dat2csv/internal/index"
)

func TestConvertCommand(t *testing.T) {
	tmpDir := t.TempDir()
	inDir := filepath.Join(tmpDir, "in")
	outDir := filepath.Join(tmpDir, "out")
	idxDir := filepath.Join(tmpDir, "idx")
	require.NoError(t, os.MkdirAll(inDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "example.dat"), []byte(
		"id col2 col3 col4 title col6 col7\n"+
			"id name age dept Senior Software Engineer dept2 50000\n"+
			"id2 name2 age2 dept2 Junior Dev dept3 30000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "other.dat"), []byte(
		"employee_id col2 col3 col4 title col6 col7\n"), 0o644))

	rootCmd.SetArgs([]string{
		"convert",
		"--input-dir", inDir,
		"--output-dir", outDir,
		"--salary-column", "last",
		"--index",
		"--index-dir", idxDir,
	})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(filepath.Join(outDir, "example.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Second Highest Salary = 30000,Average Salary = 40000.0")

	_, err = os.Stat(filepath.Join(outDir, "other.csv"))
	assert.True(t, os.IsNotExist(err))

	store, err := index.NewStore(indexConfig())
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List(context.Background(), index.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 30000, entries[0].SecondHighest)
}

func TestInitLogging(t *testing.T) {
	assert.NoError(t, initLogging("debug"))
	assert.NoError(t, initLogging("WARN"))
	assert.Error(t, initLogging("loud"))
}

func TestFormatEntries(t *testing.T) {
	entries := []index.Entry{{
		Input:         "input/a-very-long-directory-name/staff.dat",
		Rows:          3,
		Duplicates:    1,
		SecondHighest: 60000,
		Average:       64000,
		ConvertedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, formatEntries(&buf, entries, false))
	out := buf.String()
	assert.Contains(t, out, "staff.dat")
	assert.Contains(t, out, "64000.0")
	assert.Contains(t, out, "2026-03-01 12:00:00")
	assert.Contains(t, out, "1 summaries")

	buf.Reset()
	require.NoError(t, formatEntries(&buf, nil, false))
	assert.Contains(t, buf.String(), "No summaries indexed.")

	buf.Reset()
	require.NoError(t, formatEntries(&buf, entries, true))
	assert.Contains(t, buf.String(), `"second_highest": 60000`)
}
