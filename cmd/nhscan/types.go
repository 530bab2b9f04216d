package main

// ScanResult is the outcome of running a signature over one dump
type ScanResult struct {
	Affected   bool
	Interfaces []string // local prefixes in discovery order, duplicates kept
	Flagged    []FlaggedRow
	Sessions   int      // session rows examined
	Hosts      []string // addresses of flagged rows, first-seen order
	Warnings   []LineWarning
}

// Rows returns the trimmed text of every flagged row
func (r ScanResult) Rows() []string {
	rows := make([]string, len(r.Flagged))
	for i, row := range r.Flagged {
		rows[i] = row.Text
	}
	return rows
}

// finish derives Affected and Hosts from the flagged rows
func (r *ScanResult) finish() {
	r.Affected = len(r.Flagged) > 0
	r.Hosts = nil
	seen := make(map[string]bool)
	for _, row := range r.Flagged {
		for _, field := range []string{row.Src, row.Dst} {
			host := hostOf(field)
			if !seen[host] {
				seen[host] = true
				r.Hosts = append(r.Hosts, host)
			}
		}
	}
}

// FileResult ties a scan result to the dump it came from
type FileResult struct {
	Name   string // path relative to the scanned directory
	Path   string // path used to open the file
	Result ScanResult
	Cached bool
	Err    error

	modTime int64
	size    int64
}

// JSON output structures

type JSONRow struct {
	Hash        string `json:"hash"`
	Line        int    `json:"line"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Row         string `json:"row"`
}

type JSONFile struct {
	Filename   string    `json:"filename"`
	Affected   bool      `json:"affected"`
	Interfaces []string  `json:"interfaces"`
	Sessions   int       `json:"sessions"`
	Hosts      []string  `json:"hosts"`
	Rows       []JSONRow `json:"rows"`
	Warnings   []string  `json:"warnings,omitempty"`
	Error      string    `json:"error,omitempty"`
}

type JSONOutput struct {
	Signature  string     `json:"signature"`
	Directory  string     `json:"directory"`
	TotalFiles int        `json:"total_files"`
	Affected   int        `json:"affected"`
	Files      []JSONFile `json:"files"`
}

// IgnoreFile represents the structure of ignore.json
type IgnoreFile struct {
	Description string   `json:"description"`
	Ignored     []string `json:"ignored"`
}
