package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter writes a lint result.
type Formatter interface {
	Format(w io.Writer, result *Result, root string) error
}

// NewFormatter returns the formatter for format ("text" or "json").
func NewFormatter(format string) Formatter {
	if format == "json" {
		return JSONFormatter{}
	}
	return TextFormatter{}
}

// TextFormatter prints issues grouped by file followed by a summary.
type TextFormatter struct{}

// printer keeps the first write error so callers can check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Format implements Formatter.
func (TextFormatter) Format(w io.Writer, result *Result, root string) error {
	p := &printer{w: w}
	p.printf("Checking site content in: %s\n%s\n\n", root, strings.Repeat("━", 60))

	for _, issue := range result.Issues {
		p.printf("%s %s\n  %s [%s]: %s\n", icon(issue.Severity), issue.File, issue.Severity, issue.Rule, issue.Message)
		if issue.Target != "" {
			p.printf("  Target: %s\n", issue.Target)
		}
		p.printf("\n")
	}

	p.printf("%s\nResults:\n  %d files scanned\n", strings.Repeat("━", 60), result.FilesTotal)
	if n := result.ErrorCount(); n > 0 {
		p.printf("  %d error%s (pages will fail to render)\n", n, pluralize(n))
	}
	if n := result.WarningCount(); n > 0 {
		p.printf("  %d warning%s\n", n, pluralize(n))
	}
	if n := result.count(SeverityInfo); n > 0 {
		p.printf("  %d info\n", n)
	}

	switch {
	case result.HasErrors():
		p.printf("\n✗ Site has errors.\n")
	case len(result.Issues) > 0:
		p.printf("\n⚠ Site has warnings.\n")
	default:
		p.printf("\n✓ All checks passed.\n")
	}
	return p.err
}

func icon(s Severity) string {
	switch s {
	case SeverityError:
		return "✗"
	case SeverityWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// JSONFormatter writes the result as indented JSON.
type JSONFormatter struct{}

type jsonOutput struct {
	Root         string  `json:"root"`
	FilesTotal   int     `json:"files_total"`
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
	Issues       []Issue `json:"issues"`
}

// Format implements Formatter.
func (JSONFormatter) Format(w io.Writer, result *Result, root string) error {
	out := jsonOutput{
		Root:         root,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Issues:       result.Issues,
	}
	if out.Issues == nil {
		out.Issues = []Issue{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
