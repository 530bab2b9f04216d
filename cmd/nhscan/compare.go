package main

import (
	"fmt"
	"sort"
)

// Comparison is the difference between a baseline report and this run
type Comparison struct {
	New        []string // affected now, not in the baseline
	Resolved   []string // affected in the baseline, scanned clean now
	Missing    []string // affected in the baseline, not scanned now
	Persisting []PersistingFile
}

// PersistingFile is a controller affected in both runs
type PersistingFile struct {
	Filename string
	BaseRows int
	HeadRows int
}

func compareResults(base, head JSONOutput) Comparison {
	baseRows := make(map[string]int)
	for _, f := range base.Files {
		if f.Affected {
			baseRows[f.Filename] = len(f.Rows)
		}
	}

	var c Comparison
	scanned := make(map[string]bool)
	for _, f := range head.Files {
		scanned[f.Filename] = true
		if f.Error != "" {
			continue
		}
		baseCount, wasAffected := baseRows[f.Filename]
		switch {
		case f.Affected && wasAffected:
			c.Persisting = append(c.Persisting, PersistingFile{
				Filename: f.Filename,
				BaseRows: baseCount,
				HeadRows: len(f.Rows),
			})
		case f.Affected:
			c.New = append(c.New, f.Filename)
		case wasAffected:
			c.Resolved = append(c.Resolved, f.Filename)
		}
	}

	for name := range baseRows {
		if !scanned[name] {
			c.Missing = append(c.Missing, name)
		}
	}

	sort.Strings(c.New)
	sort.Strings(c.Resolved)
	sort.Strings(c.Missing)
	sort.Slice(c.Persisting, func(i, j int) bool {
		return c.Persisting[i].Filename < c.Persisting[j].Filename
	})
	return c
}

// PrintComparison prints the result of compareResults
func (r *Reporter) PrintComparison(baselinePath string, c Comparison) {
	fmt.Fprintf(r.w, "\nCompared with %s\n", r.theme.Location.Render(baselinePath))

	if len(c.New) == 0 && len(c.Resolved) == 0 && len(c.Missing) == 0 && len(c.Persisting) == 0 {
		fmt.Fprintf(r.w, "  %s\n", r.theme.Dim.Render("no affected controllers in either run"))
		return
	}

	r.printNames("newly affected", c.New)
	r.printNames("no longer affected", c.Resolved)
	r.printNames("not scanned this time", c.Missing)

	if len(c.Persisting) > 0 {
		fmt.Fprintf(r.w, "  %s still affected:\n", r.theme.Count.Render(fmt.Sprintf("%d", len(c.Persisting))))
		for _, p := range c.Persisting {
			fmt.Fprintf(r.w, "    %s %s\n",
				r.theme.Location.Render(p.Filename),
				r.theme.Dim.Render(fmt.Sprintf("(%d -> %d rows)", p.BaseRows, p.HeadRows)))
		}
	}
}

func (r *Reporter) printNames(label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(r.w, "  %s %s:\n", r.theme.Count.Render(fmt.Sprintf("%d", len(names))), label)
	for _, name := range names {
		fmt.Fprintf(r.w, "    %s\n", r.theme.Location.Render(name))
	}
}
