package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Theme defines the color scheme for console output
type Theme struct {
	Header   lipgloss.Style
	Row      lipgloss.Style
	Summary  lipgloss.Style
	Location lipgloss.Style
	Count    lipgloss.Style
	Dim      lipgloss.Style
}

// newTheme builds the default color scheme for a renderer. Styles
// degrade to plain text when the renderer is not a terminal.
func newTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Row:      r.NewStyle().Foreground(lipgloss.Color("221")).TabWidth(lipgloss.NoTabConversion),
		Summary:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
		Location: r.NewStyle().Foreground(lipgloss.Color("39")),
		Count:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Dim:      r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Reporter writes the human-readable report
type Reporter struct {
	w     io.Writer
	theme Theme
	tty   bool
}

func NewReporter(w io.Writer) *Reporter {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd())
	}
	return &Reporter{
		w:     w,
		theme: newTheme(lipgloss.NewRenderer(w)),
		tty:   tty,
	}
}

// PrintResults prints every affected file with its flagged rows and
// returns the number of affected files
func (r *Reporter) PrintResults(results []FileResult) int {
	affected := 0
	for _, fr := range results {
		if fr.Err != nil || !fr.Result.Affected {
			continue
		}
		affected++

		header := fmt.Sprintf("***** FILE %s, IP INTERFACES: %s *****",
			fr.Name, strings.Join(fr.Result.Interfaces, ", "))
		fmt.Fprintf(r.w, "\n%s\n", r.theme.Header.Render(header))
		for _, row := range fr.Result.Flagged {
			fmt.Fprintf(r.w, "  %s\n", r.theme.Row.Render(row.Text))
		}
	}
	return affected
}

// PrintTotal prints the final summary line
func (r *Reporter) PrintTotal(affected int) {
	fmt.Fprintf(r.w, "\n%s\n", r.theme.Summary.Render(fmt.Sprintf("%d CONTROLLERS AFFECTED", affected)))
}

// PrintDetailed renders a markdown report of the affected files
func (r *Reporter) PrintDetailed(results []FileResult) {
	r.renderMarkdown(buildDetailedMarkdown(results))
}

func buildDetailedMarkdown(results []FileResult) string {
	var sb strings.Builder
	sb.WriteString("# Affected controllers\n\n")

	n := 0
	for _, fr := range results {
		if fr.Err != nil || !fr.Result.Affected {
			continue
		}
		n++
		res := fr.Result

		sb.WriteString(fmt.Sprintf("## %d. `%s`\n\n", n, fr.Name))
		sb.WriteString(fmt.Sprintf("**Interfaces:** %s  **Sessions checked:** %d  **Flagged:** %d\n\n",
			strings.Join(res.Interfaces, ", "), res.Sessions, len(res.Flagged)))

		sb.WriteString("| Line | Source | Destination | Hash |\n")
		sb.WriteString("|-----:|--------|-------------|------|\n")
		for _, row := range res.Flagged {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | `%s` |\n", row.Line, row.Src, row.Dst, row.HashString()))
		}
		sb.WriteString("\n")

		sb.WriteString("**Hosts:** ")
		sb.WriteString(strings.Join(res.Hosts, ", "))
		sb.WriteString("\n\n---\n\n")
	}

	if n == 0 {
		sb.WriteString("No affected controllers.\n")
	}
	return sb.String()
}

// markdownWidth keeps session tables on one line in most terminals
const markdownWidth = 160

// renderMarkdown renders through glamour, falling back to the raw text
func (r *Reporter) renderMarkdown(markdown string) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(markdownWidth)}
	if r.tty {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err == nil {
		var out string
		if out, err = tr.Render(markdown); err == nil {
			fmt.Fprint(r.w, out)
			return
		}
	}
	fmt.Fprint(r.w, markdown)
}

// buildJSONOutput converts results into the JSON report
func buildJSONOutput(dir, signature string, results []FileResult) JSONOutput {
	out := JSONOutput{
		Signature:  signature,
		Directory:  dir,
		TotalFiles: len(results),
		Files:      make([]JSONFile, 0, len(results)),
	}

	for _, fr := range results {
		res := fr.Result
		jf := JSONFile{
			Filename:   fr.Name,
			Affected:   fr.Err == nil && res.Affected,
			Interfaces: nonNil(res.Interfaces),
			Sessions:   res.Sessions,
			Hosts:      nonNil(res.Hosts),
			Rows:       make([]JSONRow, len(res.Flagged)),
		}
		if fr.Err != nil {
			jf.Error = fr.Err.Error()
		}
		for i, row := range res.Flagged {
			jf.Rows[i] = JSONRow{
				Hash:        row.HashString(),
				Line:        row.Line,
				Source:      row.Src,
				Destination: row.Dst,
				Row:         row.Text,
			}
		}
		for _, w := range res.Warnings {
			jf.Warnings = append(jf.Warnings, w.String())
		}
		if jf.Affected {
			out.Affected++
		}
		out.Files = append(out.Files, jf)
	}

	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// WriteJSONResults writes the report to outputPath
func WriteJSONResults(out JSONOutput, outputPath string) error {
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("writing JSON file: %w", err)
	}
	return nil
}

// ReadJSONResults reads a report written by WriteJSONResults
func ReadJSONResults(path string) (JSONOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return JSONOutput{}, err
	}

	var out JSONOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return JSONOutput{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}
