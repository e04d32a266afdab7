// Package lint checks a site for the defects that would otherwise surface
// only when a page is rendered: version table entries that are missing or
// inconsistent with the content tree, and relative links to pages that do
// not exist.
package lint

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo indicates informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that should be fixed but don't block builds.
	SeverityWarning
	// SeverityError indicates issues that make pages fail to render.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Rule identifiers.
const (
	RuleVersionTable   = "version-table"
	RuleMissingEntry   = "missing-version-entry"
	RuleStableContent  = "stable-without-content"
	RuleBrokenLink     = "broken-link"
	RuleMissingTitle   = "missing-title"
	RuleInvalidContent = "invalid-link-syntax"
)

// Issue represents a single problem found in the site.
type Issue struct {
	// File is the document's path relative to the content root, or the
	// version table path for table issues.
	File     string   `json:"file"`
	Severity Severity `json:"-"`
	Level    string   `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Target   string   `json:"target,omitempty"`
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue `json:"issues"`
	FilesTotal int     `json:"files_total"`
}

func (r *Result) add(sev Severity, rule, file, msg, target string) {
	r.Issues = append(r.Issues, Issue{
		File:     file,
		Severity: sev,
		Level:    sev.String(),
		Rule:     rule,
		Message:  msg,
		Target:   target,
	})
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int { return r.count(SeverityWarning) }

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool { return r.ErrorCount() > 0 }

func (r *Result) count(sev Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}
