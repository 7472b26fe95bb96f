// Package skill models agent skill packages: directories containing a
// SKILL.md manifest with YAML frontmatter plus optional scripts and
// resources. It covers discovery across configured roots, validation against
// the packaging convention, scaffolding, and frontmatter normalization.
//
// Loading is deliberately two-phase. Discovery reads only the frontmatter,
// which is what catalogs and upload manifests need; the instruction body is
// fetched on demand via Body.
package skill

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ManifestName is the file every skill package must carry at its root.
const ManifestName = "SKILL.md"

// Skill is a discovered skill package.
type Skill struct {
	Name         string
	Description  string
	License      string
	AllowedTools []string
	Directory    string
}

// Metadata is the YAML frontmatter of a SKILL.md manifest.
type Metadata struct {
	Name         string   `yaml:"name" mapstructure:"name"`
	Description  string   `yaml:"description" mapstructure:"description"`
	License      string   `yaml:"license,omitempty" mapstructure:"license"`
	AllowedTools []string `yaml:"allowed-tools,omitempty" mapstructure:"allowed-tools"`
}

// Load reads the manifest frontmatter from a skill directory.
func Load(dir string) (*Skill, error) {
	manifest := filepath.Join(dir, ManifestName)
	content, err := os.ReadFile(manifest)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", manifest)
	}

	meta, err := ParseFrontmatter(content)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", manifest)
	}
	if meta.Name == "" {
		return nil, errors.Errorf("%s: frontmatter missing required field name", manifest)
	}
	if meta.Description == "" {
		return nil, errors.Errorf("%s: frontmatter missing required field description", manifest)
	}

	return &Skill{
		Name:         meta.Name,
		Description:  meta.Description,
		License:      meta.License,
		AllowedTools: meta.AllowedTools,
		Directory:    dir,
	}, nil
}

// Body reads the manifest again and returns the instruction body with the
// frontmatter stripped.
func (s *Skill) Body() (string, error) {
	content, err := os.ReadFile(filepath.Join(s.Directory, ManifestName))
	if err != nil {
		return "", errors.Wrap(err, "reading skill manifest")
	}
	return ExtractBody(string(content)), nil
}

// Files lists every regular file in the package, relative to its root,
// sorted by path. This is the upload manifest for publishing. VCS and
// build-cache directories are not package content and are excluded.
func (s *Skill) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.Directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "node_modules", "__pycache__":
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.Directory, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", s.Directory)
	}
	return files, nil
}
