package skill

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	// MaxNameLength is the longest allowed skill name.
	MaxNameLength = 64
	// MaxDescriptionLength is the longest allowed frontmatter description.
	MaxDescriptionLength = 1024
	// MaxFrontmatterBytes is the advisory ceiling for the whole frontmatter
	// block. Discovery surfaces only load frontmatter, so oversized blocks
	// waste context everywhere the skill is listed.
	MaxFrontmatterBytes = 1024
	// MaxPackageBytes caps the total on-disk size of a skill package.
	MaxPackageBytes = 8 << 20
)

var nameRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidationResult reports everything a validation pass learned about one
// skill package. Errors make the package unpublishable; warnings do not.
type ValidationResult struct {
	Directory string   `json:"directory"`
	Name      string   `json:"name,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`

	FileCount    int   `json:"file_count"`
	TotalSize    int64 `json:"total_size"`
	HasScripts   bool  `json:"has_scripts"`
	HasReference bool  `json:"has_reference"`
}

// Valid reports whether the package can be published.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err folds the errors into a single multierror, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	var result *multierror.Error
	for _, e := range r.Errors {
		result = multierror.Append(result, errors.New(e))
	}
	return result.ErrorOrNil()
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks one skill package directory against the packaging rules:
// a SKILL.md manifest with parseable frontmatter carrying name and
// description, a lowercase-hyphenated name that matches the directory,
// bounded description and package sizes, and no symlinks escaping the
// package root.
func Validate(dir string) *ValidationResult {
	result := &ValidationResult{Directory: dir}

	info, err := os.Stat(dir)
	if err != nil {
		result.addError("cannot read skill directory: %v", err)
		return result
	}
	if !info.IsDir() {
		result.addError("%s is not a directory", dir)
		return result
	}

	validateManifest(dir, result)
	validateContents(dir, result)
	return result
}

func validateManifest(dir string, result *ValidationResult) {
	manifestPath := filepath.Join(dir, ManifestName)
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		result.addError("missing %s", ManifestName)
		return
	}

	meta, parseErr := ParseFrontmatter(content)
	if parseErr != nil {
		result.addError("frontmatter does not parse: %v", parseErr)
		return
	}

	validateName(dir, meta.Name, result)
	validateDescription(meta.Description, result)

	if raw, body, ok := SplitFrontmatter(string(content)); ok {
		if len(raw) > MaxFrontmatterBytes {
			result.addWarning("frontmatter is %d bytes (advisory limit %d)", len(raw), MaxFrontmatterBytes)
		}
		if strings.TrimSpace(body) == "" {
			result.addWarning("%s has no body beneath the frontmatter", ManifestName)
		}
	}
}

func validateName(dir, name string, result *ValidationResult) {
	result.Name = name
	if name == "" {
		result.addError("frontmatter is missing required field %q", "name")
		return
	}
	if len(name) > MaxNameLength {
		result.addError("name %q is %d characters (limit %d)", name, len(name), MaxNameLength)
	}
	if !nameRe.MatchString(name) {
		result.addError("name %q must be lowercase letters, digits, and single hyphens", name)
	}
	if base := filepath.Base(dir); base != name {
		result.addError("name %q does not match directory name %q", name, base)
	}
}

func validateDescription(description string, result *ValidationResult) {
	if description == "" {
		result.addError("frontmatter is missing required field %q", "description")
		return
	}
	if len(description) > MaxDescriptionLength {
		result.addError("description is %d characters (limit %d)", len(description), MaxDescriptionLength)
	}
}

func validateContents(dir string, result *ValidationResult) {
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		result.addError("resolving package root: %v", err)
		return
	}

	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			checkSymlink(absRoot, path, result)
			return nil
		}
		if entry.IsDir() {
			switch entry.Name() {
			case "scripts":
				result.HasScripts = true
			case ".git", "node_modules", "__pycache__":
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Name() == "REFERENCE.md" {
			result.HasReference = true
		}
		info, statErr := entry.Info()
		if statErr != nil {
			return statErr
		}
		result.FileCount++
		result.TotalSize += info.Size()
		return nil
	})
	if walkErr != nil {
		result.addError("walking package: %v", walkErr)
		return
	}

	if result.TotalSize > MaxPackageBytes {
		result.addError("package is %d bytes (limit %d)", result.TotalSize, int64(MaxPackageBytes))
	}
}

// checkSymlink flags links whose target resolves outside the package root.
// Uploads materialize the tree, so an escaping link would leak files that
// were never part of the package.
func checkSymlink(absRoot, path string, result *ValidationResult) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		result.addError("broken symlink %s: %v", path, err)
		return
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		result.addError("resolving symlink %s: %v", path, err)
		return
	}
	resolvedRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		resolvedRoot = absRoot
	}
	rel, err := filepath.Rel(resolvedRoot, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") {
		result.addError("symlink %s escapes the package root", path)
	}
}

// ValidateAll validates every skill under the discovery roots.
func ValidateAll(d *Discovery) ([]*ValidationResult, error) {
	skills, err := d.List()
	if err != nil {
		return nil, err
	}
	results := make([]*ValidationResult, 0, len(skills))
	for _, s := range skills {
		results = append(results, Validate(s.Directory))
	}
	return results, nil
}
