package lint

import "fmt"

// Severity grades a finding. Errors fail the lint run; warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names, stable for machine consumers.
const (
	RulePaletteTable   = "palette-table"
	RuleNamingExample  = "naming-example"
	RuleBannedToken    = "banned-token"
	RuleSkillManifest  = "skill-manifest"
	RuleUnreadableFile = "unreadable-file"
)

// Finding is one problem discovered in the corpus.
type Finding struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
}

// String renders a finding the way compilers do: file:line: severity: message.
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: %s: %s [%s]", f.File, f.Line, f.Severity, f.Message, f.Rule)
}

// Report collects the findings of one lint run.
type Report struct {
	Findings     []Finding `json:"findings"`
	FilesScanned int       `json:"files_scanned"`
}

func (r *Report) add(file string, line int, severity Severity, rule, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		File:     file,
		Line:     line,
		Severity: severity,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errors counts error-severity findings.
func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings counts warning-severity findings.
func (r *Report) Warnings() int {
	return len(r.Findings) - r.Errors()
}

// HasErrors reports whether the run should exit non-zero.
func (r *Report) HasErrors() bool {
	return r.Errors() > 0
}
