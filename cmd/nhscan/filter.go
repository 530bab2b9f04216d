package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FilterStats holds statistics about filtered rows
type FilterStats struct {
	IgnoredRows  int
	ClearedFiles int // files that were affected only through ignored rows
}

func ignorePath(dir string) string {
	return filepath.Join(dir, stateDir, "ignore.json")
}

// LoadIgnoredRows reads ignore.json and returns the acknowledged row hashes.
// A missing file is not an error.
func LoadIgnoredRows(dir string) (map[uint64]bool, error) {
	data, err := os.ReadFile(ignorePath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ignoreFile IgnoreFile
	if err := json.Unmarshal(data, &ignoreFile); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ignorePath(dir), err)
	}

	ignored := make(map[uint64]bool)
	for _, hashStr := range ignoreFile.Ignored {
		var hash uint64
		if _, err := fmt.Sscanf(hashStr, "%x", &hash); err == nil {
			ignored[hash] = true
		}
	}
	return ignored, nil
}

// FilterResults drops ignored rows and recomputes whether each file is
// still affected. The input results are left untouched.
func FilterResults(results []FileResult, ignored map[uint64]bool) ([]FileResult, FilterStats) {
	var stats FilterStats
	if len(ignored) == 0 {
		return results, stats
	}

	filtered := make([]FileResult, len(results))
	for i, r := range results {
		filtered[i] = r
		if len(r.Result.Flagged) == 0 {
			continue
		}

		kept := make([]FlaggedRow, 0, len(r.Result.Flagged))
		for _, row := range r.Result.Flagged {
			if ignored[row.Hash] {
				stats.IgnoredRows++
				continue
			}
			kept = append(kept, row)
		}
		if len(kept) == len(r.Result.Flagged) {
			continue
		}

		res := r.Result
		res.Flagged = kept
		res.finish()
		if !res.Affected {
			stats.ClearedFiles++
		}
		filtered[i].Result = res
	}

	return filtered, stats
}
