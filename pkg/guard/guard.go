// Package guard implements the advisory safety checks that run as agent
// PreToolUse hooks: a command guard that inspects shell command strings and a
// write guard that inspects destination file paths. Guards warn, never block.
// Every invocation exits successfully regardless of what it finds, and no
// state is kept across invocations.
package guard

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// Finding is a single advisory warning produced by a guard check.
type Finding struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Guard evaluates commands and write paths against the advisory rule set.
// The zero value is not usable; construct with New.
type Guard struct {
	protectedDirs  []string
	protectedFiles []string
	installers     [][]string
	outputsDir     string
	outputsExts    map[string]struct{}
	ignoreGlobs    []glob.Glob
}

// Option customizes a Guard. Options extend the built-in rules; the default
// floor is never removed.
type Option func(*Guard) error

// WithProtectedDirs adds directory names whose recursive deletion warns.
func WithProtectedDirs(dirs ...string) Option {
	return func(g *Guard) error {
		g.protectedDirs = append(g.protectedDirs, dirs...)
		return nil
	}
}

// WithProtectedFiles adds basenames the write guard warns about.
func WithProtectedFiles(files ...string) Option {
	return func(g *Guard) error {
		g.protectedFiles = append(g.protectedFiles, files...)
		return nil
	}
}

// WithInstallers adds installer invocations (space-separated prefixes such as
// "conda install") that should only run against a manifest.
func WithInstallers(installers ...string) Option {
	return func(g *Guard) error {
		for _, installer := range installers {
			fields := strings.Fields(installer)
			if len(fields) == 0 {
				continue
			}
			g.installers = append(g.installers, fields)
		}
		return nil
	}
}

// WithOutputsDir overrides the directory name the extension rule applies to.
func WithOutputsDir(dir string) Option {
	return func(g *Guard) error {
		if dir == "" {
			return nil
		}
		g.outputsDir = path.Base(path.Clean(strings.ReplaceAll(dir, "\\", "/")))
		return nil
	}
}

// WithOutputsExts adds extensions accepted under the outputs directory.
func WithOutputsExts(exts ...string) Option {
	return func(g *Guard) error {
		for _, ext := range exts {
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			g.outputsExts[strings.ToLower(ext)] = struct{}{}
		}
		return nil
	}
}

// WithIgnorePatterns adds glob patterns for paths the write guard skips.
func WithIgnorePatterns(patterns ...string) Option {
	return func(g *Guard) error {
		for _, pattern := range patterns {
			compiled, err := glob.Compile(pattern)
			if err != nil {
				return errors.Wrapf(err, "compiling ignore pattern %q", pattern)
			}
			g.ignoreGlobs = append(g.ignoreGlobs, compiled)
		}
		return nil
	}
}

// New builds a Guard with the built-in rules plus any options.
func New(opts ...Option) (*Guard, error) {
	g := &Guard{
		protectedDirs:  append([]string{}, DefaultProtectedDirs...),
		protectedFiles: append([]string{}, DefaultProtectedFiles...),
		outputsDir:     DefaultOutputsDir,
		outputsExts:    map[string]struct{}{},
	}
	for _, prefix := range defaultInstallers {
		g.installers = append(g.installers, prefix)
	}
	for _, ext := range DefaultOutputsExts {
		g.outputsExts[ext] = struct{}{}
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// CheckCommand inspects a shell command string and returns advisory findings.
// The command is split on shell operators and each simple command is checked
// independently, so risky segments hidden behind && or pipes still surface.
func (g *Guard) CheckCommand(command string) []Finding {
	var findings []Finding
	for _, segment := range splitCommands(command) {
		fields := stripWrappers(strings.Fields(segment))
		if len(fields) == 0 {
			continue
		}
		findings = append(findings, g.checkDeletion(fields)...)
		findings = append(findings, g.checkInstall(fields)...)
		findings = append(findings, g.checkServer(fields)...)
	}
	return findings
}

// CheckWrite inspects a destination file path and returns advisory findings.
func (g *Guard) CheckWrite(filePath string) []Finding {
	if filePath == "" {
		return nil
	}

	normalized := path.Clean(strings.ReplaceAll(filePath, "\\", "/"))
	for _, ignored := range g.ignoreGlobs {
		if ignored.Match(normalized) {
			return nil
		}
	}

	var findings []Finding

	base := path.Base(normalized)
	for _, protected := range g.protectedFiles {
		if base == protected {
			findings = append(findings, Finding{
				Rule:    RuleProtectedFile,
				Message: fmt.Sprintf("%s is a protected file; edits to it change shared reference material", protected),
			})
			break
		}
	}

	if dir, inOutputs := g.insideOutputs(normalized); inOutputs {
		ext := strings.ToLower(path.Ext(base))
		if _, ok := g.outputsExts[ext]; !ok {
			findings = append(findings, Finding{
				Rule:    RuleUnexpectedExtension,
				Message: fmt.Sprintf("%s is unexpected under %s/, which holds generated documents (%s)", base, dir, strings.Join(sortedExts(g.outputsExts), " ")),
			})
		}
	}

	return findings
}

// insideOutputs reports whether the path has the outputs directory as one of
// its parent segments. The final element is the file itself and never counts.
func (g *Guard) insideOutputs(normalized string) (string, bool) {
	segments := strings.Split(normalized, "/")
	if len(segments) < 2 {
		return "", false
	}
	for _, segment := range segments[:len(segments)-1] {
		if segment == g.outputsDir {
			return segment, true
		}
	}
	return "", false
}
