package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wesleyorama2/benchit/internal/bench/report"
)

// Format is a report output format
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter renders benchmark reports for display
type Formatter struct {
	Verbose bool
	Colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, color bool) *Formatter {
	scheme := NoColorScheme()
	if color {
		scheme = ForcedColorScheme()
	}
	return &Formatter{Verbose: verbose, Colors: scheme}
}

// Format renders rep in the given format. Text output ends with a newline
// unless the report is empty.
func (f *Formatter) Format(rep *report.Report, format Format) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		return string(data) + "\n", nil
	}
	return f.FormatReport(rep), nil
}

// FormatReport renders rep as text. Internal-loop lines are rebuilt from
// the measurements so each figure can be colored; with colors disabled the
// text is identical to rep.String().
func (f *Formatter) FormatReport(rep *report.Report) string {
	var buf strings.Builder

	if f.Verbose {
		buf.WriteString(fmt.Sprintf("backend: %s\n", f.Colors.Backend.Sprint(rep.Backend)))
	}

	if len(rep.Measurements) == len(rep.Lines) && len(rep.Measurements) > 0 {
		for _, m := range rep.Measurements {
			if rep.Prefixed {
				buf.WriteString(f.Colors.Name.Sprint(m.Name))
				buf.WriteString(": ")
			}
			buf.WriteString(fmt.Sprintf("%s calls (%s/s), %ss (%ss/call)\n",
				f.Colors.Calls.Sprintf("%d", m.Calls),
				f.Colors.Rate.Sprintf("%.0f", m.Rate()),
				f.Colors.Elapsed.Sprintf("%.4f", m.Elapsed),
				f.Colors.PerCall.Sprintf("%.4f", m.PerCall())))
		}
		return buf.String()
	}

	for _, line := range rep.Lines {
		if name, rest, ok := strings.Cut(line, ": "); ok && !strings.ContainsAny(name, " \t") {
			buf.WriteString(f.Colors.Name.Sprint(name))
			buf.WriteString(": ")
			buf.WriteString(rest)
		} else {
			buf.WriteString(line)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// FormatError renders err for stderr
func (f *Formatter) FormatError(err error) string {
	return fmt.Sprintf("%s %s\n", f.Colors.Error.Sprint("Error:"), err)
}
