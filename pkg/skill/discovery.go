package skill

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/logger"
)

// Discovery finds skill packages under configured roots. Roots are scanned
// recursively, so both flat layouts (skills/<name>) and grouped layouts
// (skills/<domain>/<name>, collection/<team>/skills/<name>) work. Earlier
// roots win on name collisions.
type Discovery struct {
	roots []string
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithRoots sets the scan roots, replacing any defaults.
func WithRoots(roots ...string) Option {
	return func(d *Discovery) error {
		d.roots = roots
		return nil
	}
}

// WithDefaultRoots scans ./skills first, then the user-global root.
func WithDefaultRoots() Option {
	return func(d *Discovery) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "resolving home directory")
		}
		d.roots = []string{
			"./skills",
			filepath.Join(home, ".skillet", "skills"),
		}
		return nil
	}
}

// NewDiscovery builds a Discovery; with no options it uses the defaults.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}
	if len(opts) == 0 {
		opts = []Option{WithDefaultRoots()}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Roots returns the configured scan roots in precedence order.
func (d *Discovery) Roots() []string {
	return d.roots
}

// Discover walks every root and returns the found skills keyed by name.
// Packages whose manifests fail to parse are skipped with a debug log;
// discovery is a catalog operation, not a validation pass.
func (d *Discovery) Discover() (map[string]*Skill, error) {
	skills := make(map[string]*Skill)
	for _, root := range d.roots {
		d.discoverRoot(root, skills)
	}
	return skills, nil
}

func (d *Discovery) discoverRoot(root string, skills map[string]*Skill) {
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		// os.Stat follows symlinks, so a linked skill directory counts
		info, statErr := os.Stat(path)
		if statErr != nil || !info.IsDir() {
			return nil
		}

		if _, statErr := os.Stat(filepath.Join(path, ManifestName)); statErr != nil {
			return nil
		}

		loaded, loadErr := Load(path)
		if loadErr != nil {
			logger.L.WithError(loadErr).WithField("dir", path).Debug("skipping unparseable skill")
			return skipUnlessSymlink(entry)
		}
		if _, exists := skills[loaded.Name]; !exists {
			skills[loaded.Name] = loaded
		}
		// a skill package never nests another skill package
		return skipUnlessSymlink(entry)
	})
}

// skipUnlessSymlink prunes the walk below a skill directory. WalkDir never
// descends into symlinks, and returning SkipDir for a non-directory entry
// would skip the rest of its parent.
func skipUnlessSymlink(entry fs.DirEntry) error {
	if entry.Type()&fs.ModeSymlink != 0 {
		return nil
	}
	return filepath.SkipDir
}

// Get returns one skill by name.
func (d *Discovery) Get(name string) (*Skill, error) {
	skills, err := d.Discover()
	if err != nil {
		return nil, err
	}
	s, ok := skills[name]
	if !ok {
		return nil, errors.Errorf("skill %q not found under %v", name, d.roots)
	}
	return s, nil
}

// List returns all discovered skills sorted by name.
func (d *Discovery) List() ([]*Skill, error) {
	skills, err := d.Discover()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Skill, len(names))
	for i, name := range names {
		out[i] = skills[name]
	}
	return out, nil
}

// FilterByAllowlist keeps only the named skills. An empty allowlist keeps
// everything.
func FilterByAllowlist(skills map[string]*Skill, allowed []string) map[string]*Skill {
	if len(allowed) == 0 {
		return skills
	}
	filtered := make(map[string]*Skill)
	for _, name := range allowed {
		if s, ok := skills[name]; ok {
			filtered[name] = s
		}
	}
	return filtered
}
