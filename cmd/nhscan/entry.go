package main

import (
	"fmt"
	"hash/fnv"
	"net"
	"strings"
)

// FlaggedRow is a session row whose source and destination both fall into
// a local interface prefix
type FlaggedRow struct {
	Line int    // 1-based line number in the dump
	Src  string // first field of the row
	Dst  string // second field of the row
	Text string // row with surrounding whitespace trimmed
	Hash uint64 // FNV-1a of Text, used by ignore.json
}

// NewFlaggedRow builds a FlaggedRow with its hash pre-computed
func NewFlaggedRow(lineNum int, line, src, dst string) FlaggedRow {
	text := strings.TrimSpace(line)
	return FlaggedRow{
		Line: lineNum,
		Src:  src,
		Dst:  dst,
		Text: text,
		Hash: hashRow(text),
	}
}

// HashString returns the row hash the way it is written to ignore.json
func (r FlaggedRow) HashString() string {
	return fmt.Sprintf("%016x", r.Hash)
}

// LineWarning records an input line that was skipped
type LineWarning struct {
	Line   int
	Text   string
	Reason string
}

func (w LineWarning) String() string {
	return fmt.Sprintf("line %d: %s: %q", w.Line, w.Reason, w.Text)
}

func hashRow(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}

// hostOf strips the port from an address:port field. Fields without a
// port are returned unchanged.
func hostOf(field string) string {
	if host, _, err := net.SplitHostPort(field); err == nil {
		return host
	}
	return field
}
