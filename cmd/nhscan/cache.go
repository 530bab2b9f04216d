package main

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// CachedFile stores a scan result with the file stamp it was computed for
type CachedFile struct {
	ModTime int64
	Size    int64
	Result  ScanResult
}

// FileCache stores all cached scan results of one signature
type FileCache struct {
	Version int    // cache format version for invalidation
	Params  string // signature settings the results depend on
	Files   map[string]CachedFile
}

const cacheVersion = 1

func cachePath(dir, signature string) string {
	return filepath.Join(dir, stateDir, signature+"-cache.gob")
}

// loadCache returns nil when there is no usable cache
func loadCache(dir, signature, params string) *FileCache {
	file, err := os.Open(cachePath(dir, signature))
	if err != nil {
		return nil
	}
	defer file.Close()

	var cache FileCache
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&cache); err != nil {
		return nil
	}

	if cache.Version != cacheVersion || cache.Params != params {
		return nil
	}

	return &cache
}

// lookup returns the cached result for name if the file is unchanged
func (c *FileCache) lookup(name string, info os.FileInfo) (ScanResult, bool) {
	if c == nil {
		return ScanResult{}, false
	}
	cached, ok := c.Files[name]
	if !ok || cached.ModTime != info.ModTime().UnixNano() || cached.Size != info.Size() {
		return ScanResult{}, false
	}
	return cached.Result, true
}

// saveCache writes the results of every file that scanned cleanly
func saveCache(dir, signature, params string, results []FileResult) error {
	cache := FileCache{
		Version: cacheVersion,
		Params:  params,
		Files:   make(map[string]CachedFile),
	}

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		cache.Files[r.Name] = CachedFile{
			ModTime: r.modTime,
			Size:    r.size,
			Result:  r.Result,
		}
	}

	if err := os.MkdirAll(filepath.Join(dir, stateDir), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	file, err := os.Create(cachePath(dir, signature))
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(cache); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return nil
}
