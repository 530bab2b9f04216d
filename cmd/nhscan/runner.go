package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Runner scans dump files with a bounded pool of goroutines
type Runner struct {
	Signature Signature
	Dir       string
	Workers   int
	Cache     *FileCache // may be nil
}

// Run scans every file. Results keep the order of files.
func (r *Runner) Run(files []string) []FileResult {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]FileResult, len(files))
	p := pool.New().WithMaxGoroutines(workers)
	for i, name := range files {
		p.Go(func() {
			results[i] = r.scanFile(name)
		})
	}
	p.Wait()

	return results
}

func (r *Runner) scanFile(name string) FileResult {
	path := filepath.Join(r.Dir, filepath.FromSlash(name))
	res := FileResult{Name: name, Path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = fmt.Errorf("stat %s: %w", name, err)
		return res
	}
	res.modTime = info.ModTime().UnixNano()
	res.size = info.Size()

	if cached, ok := r.Cache.lookup(name, info); ok {
		res.Result = cached
		res.Cached = true
		return res
	}

	lines, err := readLines(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", name, err)
		return res
	}

	res.Result = r.Signature.Scan(lines)
	if n := firstInvalidUTF8(lines); n > 0 {
		res.Result.Warnings = append(res.Result.Warnings, LineWarning{
			Line:   n,
			Reason: "invalid UTF-8",
		})
	}
	return res
}
