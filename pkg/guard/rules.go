package guard

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Rule identifiers attached to findings. Stable strings so downstream
// tooling can filter on them.
const (
	RuleProtectedDirDelete  = "protected-dir-delete"
	RuleUnmanagedInstall    = "unmanaged-install"
	RuleSDKReinstall        = "sdk-reinstall"
	RuleLocalServer         = "local-server"
	RuleProtectedFile       = "protected-file"
	RuleUnexpectedExtension = "unexpected-extension"
)

var (
	// DefaultProtectedDirs are directory names whose recursive deletion
	// draws a warning. They hold skill sources, curated collections, and
	// generated outputs.
	DefaultProtectedDirs = []string{"skills", "collection", "outputs", ".claude"}

	// DefaultProtectedFiles are basenames the write guard warns about.
	DefaultProtectedFiles = []string{"brand_guidelines.md", "requirements.txt", ".env"}

	// DefaultOutputsDir is the directory name the extension rule covers.
	DefaultOutputsDir = "outputs"

	// DefaultOutputsExts are the generated-document extensions expected
	// under the outputs directory.
	DefaultOutputsExts = []string{".xlsx", ".pptx", ".pdf", ".docx", ".csv", ".md", ".png"}

	// defaultInstallers are installer invocations that should only run
	// against the requirements.txt manifest.
	defaultInstallers = [][]string{
		{"pip", "install"},
		{"pip3", "install"},
		{"uv", "pip", "install"},
		{"python", "-m", "pip", "install"},
		{"python3", "-m", "pip", "install"},
	}

	// manifestFlags mark an install as manifest-driven.
	manifestFlags = map[string]struct{}{
		"-r":             {},
		"--requirement":  {},
		"--requirements": {},
	}

	// sdkPackage is the SDK whose ad-hoc reinstallation can break the
	// version pin the walkthroughs rely on.
	sdkPackage = "anthropic"

	// serverSubcommands are jupyter subcommands that start a local server.
	serverSubcommands = map[string]struct{}{
		"notebook": {},
		"lab":      {},
	}
)

// splitCommands breaks a command string on shell operators so each simple
// command is inspected on its own. Quoting is deliberately not parsed; the
// guard is advisory and a false positive costs one extra line of output.
func splitCommands(command string) []string {
	commands := []string{command}
	for _, op := range []string{"&&", "||", ";", "|"} {
		var next []string
		for _, cmd := range commands {
			next = append(next, strings.Split(cmd, op)...)
		}
		commands = next
	}
	return commands
}

// stripWrappers removes leading environment assignments and common command
// wrappers so the first field is the program actually being run.
func stripWrappers(fields []string) []string {
	for len(fields) > 0 {
		first := fields[0]
		switch {
		case strings.Contains(first, "=") && !strings.HasPrefix(first, "-"):
			fields = fields[1:]
		case first == "sudo" || first == "env" || first == "nohup" || first == "time":
			fields = fields[1:]
		default:
			return fields
		}
	}
	return fields
}

func (g *Guard) checkDeletion(fields []string) []Finding {
	if fields[0] != "rm" {
		return nil
	}

	var recursive, force bool
	var targets []string
	for _, arg := range fields[1:] {
		switch {
		case arg == "--recursive":
			recursive = true
		case arg == "--force":
			force = true
		case strings.HasPrefix(arg, "--"):
			// other long flags are irrelevant
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			if strings.ContainsAny(arg, "rR") {
				recursive = true
			}
			if strings.Contains(arg, "f") {
				force = true
			}
		default:
			targets = append(targets, arg)
		}
	}
	if !recursive || !force {
		return nil
	}

	var findings []Finding
	for _, target := range targets {
		if dir, ok := matchesProtectedDir(target, g.protectedDirs); ok {
			findings = append(findings, Finding{
				Rule:    RuleProtectedDirDelete,
				Message: fmt.Sprintf("rm -rf targets the protected %s directory (via %q); its contents are not recoverable", dir, target),
			})
		}
	}
	return findings
}

// matchesProtectedDir reports whether any path segment of target names a
// protected directory, so deletions inside a protected tree warn too.
func matchesProtectedDir(target string, protected []string) (string, bool) {
	cleaned := path.Clean(strings.ReplaceAll(target, "\\", "/"))
	cleaned = strings.Trim(cleaned, "\"'")
	for _, segment := range strings.Split(cleaned, "/") {
		for _, dir := range protected {
			if segment == dir {
				return dir, true
			}
		}
	}
	return "", false
}

func (g *Guard) checkInstall(fields []string) []Finding {
	rest, ok := matchInstaller(fields, g.installers)
	if !ok {
		return nil
	}

	manifest := false
	var packages []string
	for _, arg := range rest {
		if _, isManifest := manifestFlags[arg]; isManifest {
			manifest = true
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if strings.HasSuffix(arg, ".txt") {
			// the manifest argument itself
			continue
		}
		packages = append(packages, packageName(arg))
	}

	var findings []Finding
	var unmanaged []string
	for _, pkg := range packages {
		if pkg == sdkPackage {
			findings = append(findings, Finding{
				Rule:    RuleSDKReinstall,
				Message: "reinstalling the anthropic package can break the version pinned in requirements.txt",
			})
			continue
		}
		unmanaged = append(unmanaged, pkg)
	}
	if !manifest && len(unmanaged) > 0 {
		findings = append(findings, Finding{
			Rule:    RuleUnmanagedInstall,
			Message: fmt.Sprintf("installing %s outside requirements.txt; pin new dependencies in the manifest", strings.Join(unmanaged, ", ")),
		})
	}
	return findings
}

func matchInstaller(fields []string, installers [][]string) ([]string, bool) {
	for _, prefix := range installers {
		if len(fields) < len(prefix) {
			continue
		}
		matched := true
		for i, word := range prefix {
			if fields[i] != word {
				matched = false
				break
			}
		}
		if matched {
			return fields[len(prefix):], true
		}
	}
	return nil, false
}

// packageName reduces a pip requirement spec to its bare package name.
func packageName(spec string) string {
	name := strings.ToLower(spec)
	if i := strings.IndexAny(name, "=<>!~["); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

func (g *Guard) checkServer(fields []string) []Finding {
	first := fields[0]
	launches := false
	switch {
	case first == "jupyter" && len(fields) > 1:
		_, launches = serverSubcommands[fields[1]]
	case first == "jupyter-notebook" || first == "jupyter-lab":
		launches = true
	}
	if !launches {
		return nil
	}
	return []Finding{{
		Rule:    RuleLocalServer,
		Message: "launching a local Jupyter server; the walkthroughs run against the hosted execution environment",
	}}
}

func sortedExts(exts map[string]struct{}) []string {
	out := make([]string, 0, len(exts))
	for ext := range exts {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
