// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dat2csv/internal/csvfile"
	"github.com/pdiddy/dat2csv/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "index")
	store, err := NewStore(types.IndexConfig{IndexDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func result(input string, second int, avg float64, at time.Time) types.FileResult {
	return types.FileResult{
		Input:      input,
		Output:     input + ".csv",
		Rows:       3,
		Duplicates: 1,
		Summary:    &types.Summary{SecondHighest: second, Average: avg},
		Finished:   at,
	}
}

// --- tests ---

func TestNewStore_RequiresDir(t *testing.T) {
	_, err := NewStore(types.IndexConfig{})
	assert.Error(t, err)
}

func TestRecordAndList(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, result("in/a.dat", 100, 150.5, t0)))
	require.NoError(t, store.Record(ctx, result("in/b.dat", 200, 250, t0.Add(time.Hour))))

	entries, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "in/b.dat", entries[0].Input, "most recent first")
	assert.Equal(t, 100, entries[1].SecondHighest)
	assert.Equal(t, 150.5, entries[1].Average)
	assert.Equal(t, 3, entries[1].Rows)
	assert.Equal(t, 1, entries[1].Duplicates)
	assert.True(t, t0.Equal(entries[1].ConvertedAt))
}

func TestRecord_Upsert(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	t0 := time.Now().UTC()

	require.NoError(t, store.Record(ctx, result("in/a.dat", 100, 1, t0)))
	require.NoError(t, store.Record(ctx, result("in/a.dat", 300, 2, t0.Add(time.Minute))))

	entries, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 300, entries[0].SecondHighest)
}

func TestRecord_IgnoresSkippedAndFailed(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, types.FileResult{Input: "in/x.dat", Skipped: true}))
	require.NoError(t, store.Record(ctx, types.FileResult{Input: "in/y.dat", Error: "boom"}))

	entries, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList_Filters(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	t0 := time.Now().UTC()

	for i, name := range []string{"in/staff.dat", "in/payroll.dat", "in/staff-2.dat"} {
		require.NoError(t, store.Record(ctx, result(name, i, 0, t0.Add(time.Duration(i)*time.Second))))
	}

	entries, err := store.List(ctx, ListOptions{Input: "staff"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = store.List(ctx, ListOptions{MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "in/staff-2.dat", entries[0].Input)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	ctx := context.Background()

	store, err := NewStore(types.IndexConfig{IndexDir: dir})
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, result("in/a.dat", 1, 1, time.Now())))
	require.NoError(t, store.Close())

	store, err = NewStore(types.IndexConfig{IndexDir: dir})
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExport(t *testing.T) {
	store, dir := testStore(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, result("in/a.dat", 100, 150.25, time.Now().UTC())))

	path, err := store.ExportYAML(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "export.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fromYAML []Entry
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, 150.25, fromYAML[0].Average)

	path, err = store.ExportJSON(ctx, ListOptions{})
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var fromJSON []Entry
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "in/a.dat", fromJSON[0].Input)
}

func TestExport_Empty(t *testing.T) {
	store, _ := testStore(t)
	path, err := store.ExportJSON(context.Background(), ListOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestRebuild(t *testing.T) {
	store, _ := testStore(t)
	outDir := t.TempDir()

	header := types.Record{"id", "a", "b", "c", "title", "s", "cur"}
	rows := []types.Record{
		{"1", "a", "b", "c", "x", "10", "USD"},
		{"2", "a", "b", "c", "y", "20", "USD"},
	}
	require.NoError(t, csvfile.WriteFile(filepath.Join(outDir, "good.csv"), header, rows,
		types.Summary{SecondHighest: 10, Average: 15}))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "plain.csv"), []byte("id,a\r\n1,b\r\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "broken.csv"), []byte("a,\"b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "notes.txt"), []byte("x"), 0o644))

	var log bytes.Buffer
	sum, err := store.Rebuild(context.Background(), "in", outDir, &log)
	require.NoError(t, err)
	assert.Equal(t, RebuildSummary{Indexed: 1, Skipped: 1, Failed: 1}, sum)
	assert.Contains(t, log.String(), "indexed good.csv (2 rows)")

	entries, err := store.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join("in", "good.dat"), entries[0].Input)
	assert.Equal(t, 15.0, entries[0].Average)
}

func TestRebuild_MissingDir(t *testing.T) {
	store, _ := testStore(t)
	_, err := store.Rebuild(context.Background(), "in", filepath.Join(t.TempDir(), "missing"), &bytes.Buffer{})
	assert.Error(t, err)
}
