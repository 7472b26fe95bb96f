package brand

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Severity distinguishes hard violations from soft warnings. Violations cost
// 10 score points, warnings 3.
type Severity string

const (
	// SeverityViolation marks off-brand usage that must change.
	SeverityViolation Severity = "violation"
	// SeverityWarning marks usage worth a second look.
	SeverityWarning Severity = "warning"
)

// Issue is a single brand-compliance finding in a piece of content.
type Issue struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
}

// Report aggregates the issues found in one document.
type Report struct {
	Issues      []Issue  `json:"issues"`
	Violations  int      `json:"violations"`
	Warnings    int      `json:"warnings"`
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// Compliant reports whether the content passed with no violations.
func (r *Report) Compliant() bool {
	return r.Violations == 0
}

var (
	hexLiteralPattern = regexp.MustCompile(`#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`)
	rgbLiteralPattern = regexp.MustCompile(`rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)`)
	fontFamilyPattern = regexp.MustCompile(`font-family\s*:\s*([^;}\n]+)`)
)

// toneSampleWords is the content length, in words, above which copy with no
// tone keywords at all draws a warning. Short snippets are exempt.
const toneSampleWords = 50

// Validator checks content against a set of guidelines.
type Validator struct {
	guidelines    *Guidelines
	approvedHex   map[string]struct{}
	approvedFonts map[string]struct{}
	brandPattern  *regexp.Regexp
	wordPatterns  map[string]*regexp.Regexp
}

// NewValidator compiles the lookup structures for repeated checks.
func NewValidator(g *Guidelines) *Validator {
	v := &Validator{
		guidelines:    g,
		approvedHex:   g.ApprovedHex(),
		approvedFonts: map[string]struct{}{},
		wordPatterns:  map[string]*regexp.Regexp{},
	}
	for _, font := range g.Fonts.Approved() {
		v.approvedFonts[strings.ToLower(font)] = struct{}{}
	}
	if g.BrandName != "" {
		v.brandPattern = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(g.BrandName) + `\b`)
	}
	for _, word := range g.ProhibitedWords {
		v.wordPatterns[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return v
}

// CheckFile validates the named file's content.
func (v *Validator) CheckFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return v.CheckContent(string(data)), nil
}

// CheckContent scans content line by line for off-palette colors, unapproved
// fonts, prohibited words, and brand-name casing drift, then scores the
// result: 100 minus 10 per violation and 3 per warning, floored at zero.
func (v *Validator) CheckContent(content string) *Report {
	report := &Report{}

	for i, line := range strings.Split(content, "\n") {
		lineNo := i + 1
		v.checkColors(report, lineNo, line)
		v.checkFonts(report, lineNo, line)
		v.checkLanguage(report, lineNo, line)
		v.checkBrandName(report, lineNo, line)
	}
	v.checkTone(report, content)

	for _, issue := range report.Issues {
		switch issue.Severity {
		case SeverityViolation:
			report.Violations++
		case SeverityWarning:
			report.Warnings++
		}
	}

	report.Score = 100 - 10*report.Violations - 3*report.Warnings
	if report.Score < 0 {
		report.Score = 0
	}
	report.Suggestions = v.suggestions(report.Issues)
	return report
}

func (v *Validator) checkColors(report *Report, lineNo int, line string) {
	for _, match := range hexLiteralPattern.FindAllString(line, -1) {
		normalized := normalizeHex(match)
		if _, ok := v.approvedHex[normalized]; !ok {
			report.add(SeverityViolation, "color", lineNo,
				fmt.Sprintf("color %s is not in the approved palette", match))
		}
	}
	for _, groups := range rgbLiteralPattern.FindAllStringSubmatch(line, -1) {
		hex, ok := rgbToHex(groups[1], groups[2], groups[3])
		if !ok {
			report.add(SeverityViolation, "color", lineNo,
				fmt.Sprintf("%s has components outside 0-255", groups[0]))
			continue
		}
		if _, approved := v.approvedHex[hex]; !approved {
			report.add(SeverityViolation, "color", lineNo,
				fmt.Sprintf("%s is not in the approved palette", groups[0]))
		}
	}
}

func (v *Validator) checkFonts(report *Report, lineNo int, line string) {
	for _, groups := range fontFamilyPattern.FindAllStringSubmatch(line, -1) {
		for _, candidate := range strings.Split(groups[1], ",") {
			font := strings.Trim(strings.TrimSpace(candidate), `"'`)
			if font == "" {
				continue
			}
			if _, ok := v.approvedFonts[strings.ToLower(font)]; !ok {
				report.add(SeverityViolation, "font", lineNo,
					fmt.Sprintf("font %q is not approved", font))
			}
		}
	}
}

func (v *Validator) checkLanguage(report *Report, lineNo int, line string) {
	for _, word := range v.guidelines.ProhibitedWords {
		if v.wordPatterns[word].MatchString(line) {
			report.add(SeverityViolation, "language", lineNo,
				fmt.Sprintf("prohibited word %q", word))
		}
	}
}

func (v *Validator) checkBrandName(report *Report, lineNo int, line string) {
	if v.brandPattern == nil {
		return
	}
	for _, match := range v.brandPattern.FindAllString(line, -1) {
		if match != v.guidelines.BrandName {
			report.add(SeverityWarning, "brand-name", lineNo,
				fmt.Sprintf("brand name written as %q; the guidelines use %q", match, v.guidelines.BrandName))
		}
	}
}

func (v *Validator) checkTone(report *Report, content string) {
	if len(strings.Fields(content)) < toneSampleWords {
		return
	}
	lowered := strings.ToLower(content)
	for _, keyword := range v.guidelines.ToneKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return
		}
	}
	report.add(SeverityWarning, "tone", 0,
		fmt.Sprintf("no tone keywords found; aim for %s", strings.Join(v.guidelines.ToneKeywords, ", ")))
}

func (v *Validator) suggestions(issues []Issue) []string {
	categories := map[string]struct{}{}
	for _, issue := range issues {
		categories[issue.Category] = struct{}{}
	}

	var out []string
	if _, ok := categories["color"]; ok {
		out = append(out, "Swap off-palette colors for approved palette values")
	}
	if _, ok := categories["font"]; ok {
		out = append(out, fmt.Sprintf("Use the approved fonts: %s", strings.Join(v.guidelines.Fonts.Approved(), ", ")))
	}
	if _, ok := categories["language"]; ok {
		out = append(out, "Remove prohibited terms from the copy")
	}
	if _, ok := categories["brand-name"]; ok {
		out = append(out, fmt.Sprintf("Write the brand name exactly as %q", v.guidelines.BrandName))
	}
	if _, ok := categories["tone"]; ok {
		out = append(out, "Work one or more tone keywords into longer copy")
	}
	sort.Strings(out)
	return out
}

func (r *Report) add(severity Severity, category string, line int, message string) {
	r.Issues = append(r.Issues, Issue{
		Severity: severity,
		Category: category,
		Line:     line,
		Message:  message,
	})
}

// normalizeHex lowercases a hex literal and expands #RGB shorthand to the
// full 6-digit form so palette lookups compare like with like.
func normalizeHex(hex string) string {
	lowered := strings.ToLower(hex)
	if len(lowered) == 4 {
		return "#" + strings.Repeat(string(lowered[1]), 2) +
			strings.Repeat(string(lowered[2]), 2) +
			strings.Repeat(string(lowered[3]), 2)
	}
	return lowered
}

func rgbToHex(rs, gs, bs string) (string, bool) {
	var r, g, b int
	fmt.Sscanf(rs+" "+gs+" "+bs, "%d %d %d", &r, &g, &b)
	if r > 255 || g > 255 || b > 255 {
		return "", false
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), true
}
