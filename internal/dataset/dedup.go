// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import "github.com/pdiddy/dat2csv/pkg/types"

// Deduplicate returns the records whose first field has not been seen
// earlier in the slice. Survivors keep their original order. Keys are
// compared by exact string equality.
func Deduplicate(records []types.Record) []types.Record {
	deduped, _ := DeduplicateCount(records)
	return deduped
}

// DeduplicateCount is Deduplicate that also reports how many rows were dropped.
func DeduplicateCount(records []types.Record) ([]types.Record, int) {
	seen := make(map[string]struct{}, len(records))
	deduped := make([]types.Record, 0, len(records))
	for _, r := range records {
		key := r.ID()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, r)
	}
	return deduped, len(records) - len(deduped)
}
