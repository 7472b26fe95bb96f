// Package lint checks a documentation corpus for consistency: color tables
// that disagree with the palette, naming-convention examples that do not
// parse, banned vendor tokens, and skill manifests with broken frontmatter.
// It lints prose the way a compiler lints code, so drift between the
// guidelines and the documents that cite them surfaces in CI instead of in
// a published deck.
package lint

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/brand"
	"github.com/skillet-ai/skillet/pkg/naming"
	"github.com/skillet-ai/skillet/pkg/skill"
)

// Linter walks a corpus and applies the consistency checks.
type Linter struct {
	guidelines *brand.Guidelines
	convention *naming.Convention
	includes   []string
	excludes   []string
}

// Option configures a Linter.
type Option func(*Linter)

// WithGuidelines swaps in a non-default brand definition.
func WithGuidelines(g *brand.Guidelines) Option {
	return func(l *Linter) { l.guidelines = g }
}

// WithConvention swaps in a non-default naming convention.
func WithConvention(c *naming.Convention) Option {
	return func(l *Linter) { l.convention = c }
}

// WithIncludes sets the glob patterns selecting corpus files.
func WithIncludes(patterns ...string) Option {
	return func(l *Linter) { l.includes = patterns }
}

// WithExcludes sets the glob patterns removing files from the corpus.
func WithExcludes(patterns ...string) Option {
	return func(l *Linter) { l.excludes = patterns }
}

// New builds a Linter. Defaults: embedded guidelines, default naming
// convention, all Markdown files except dependency, VCS, and output trees.
func New(opts ...Option) *Linter {
	l := &Linter{
		guidelines: brand.Default(),
		convention: naming.New(),
		includes:   []string{"**/*.md"},
		excludes:   []string{"**/node_modules/**", "**/.git/**", "**/outputs/**"},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run lints every corpus file under root and returns the findings.
func (l *Linter) Run(root string) (*Report, error) {
	files, err := l.collect(root)
	if err != nil {
		return nil, err
	}

	report := &Report{Findings: []Finding{}}
	for _, rel := range files {
		report.FilesScanned++
		l.lintFile(root, rel, report)
	}
	return report, nil
}

// collect resolves the include globs against root and filters the excludes.
// Returned paths are slash-separated and relative to root, sorted.
func (l *Linter) collect(root string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})

	for _, pattern := range l.includes {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "include pattern %q", pattern)
		}
		for _, m := range matches {
			if l.excluded(m) {
				continue
			}
			seen[m] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func (l *Linter) excluded(rel string) bool {
	for _, pattern := range l.excludes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (l *Linter) lintFile(root, rel string, report *Report) {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		report.add(rel, 0, SeverityError, RuleUnreadableFile, "cannot read file: %v", err)
		return
	}

	l.checkBannedTokens(rel, content, report)
	l.checkMarkdown(rel, content, report)
	if path.Base(rel) == skill.ManifestName {
		l.checkSkillManifest(rel, content, report)
	}
}

// checkBannedTokens scans raw lines so tokens hide nowhere, not even in
// HTML comments or code fences.
func (l *Linter) checkBannedTokens(rel string, content []byte, report *Report) {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, token := range l.guidelines.ExcludedTokens {
			if strings.Contains(lower, strings.ToLower(token)) {
				report.add(rel, i+1, SeverityError, RuleBannedToken, "banned token %q", token)
			}
		}
	}
}

func (l *Linter) checkSkillManifest(rel string, content []byte, report *Report) {
	meta, err := skill.ParseFrontmatter(content)
	if err != nil {
		report.add(rel, 1, SeverityError, RuleSkillManifest, "frontmatter does not parse: %v", err)
		return
	}
	if meta.Name == "" {
		report.add(rel, 1, SeverityError, RuleSkillManifest, "frontmatter is missing required field %q", "name")
	}
	if meta.Description == "" {
		report.add(rel, 1, SeverityError, RuleSkillManifest, "frontmatter is missing required field %q", "description")
	}
	if raw, _, ok := skill.SplitFrontmatter(string(content)); ok && len(raw) > skill.MaxFrontmatterBytes {
		report.add(rel, 1, SeverityWarning, RuleSkillManifest, "frontmatter is %d bytes (advisory limit %d)", len(raw), skill.MaxFrontmatterBytes)
	}
}
