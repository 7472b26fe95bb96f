// Package naming implements the versioned-document file naming convention
// used across the corpus: YYYY-MM-DD_Type_Version_Status.ext, for example
// 2025-08-25_Brandbook_v1.2_Final.pdf. The date must be a real calendar
// date, the type a capitalized token, the version a v-prefixed number, and
// the status one of a fixed vocabulary.
package naming

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

// DefaultStatuses is the built-in lifecycle vocabulary.
var DefaultStatuses = []string{"Draft", "Review", "Approved", "Final", "Archived"}

var (
	typePattern    = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	versionPattern = regexp.MustCompile(`^v\d+(\.\d+)?$`)
	// looksLikePattern is the loose shape the corpus linter uses to decide
	// whether an inline-code span is meant to be a versioned document name.
	looksLikePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\S+\.\w+$`)
)

// Name is a parsed versioned-document file name.
type Name struct {
	Date    time.Time
	DocType string
	Version string
	Status  string
	Ext     string
}

// String renders the canonical file name. Parse(n.String()) round-trips.
func (n Name) String() string {
	return fmt.Sprintf("%s_%s_%s_%s%s",
		n.Date.Format(dateLayout), n.DocType, n.Version, n.Status, n.Ext)
}

// Convention validates names against the pattern with a configurable status
// vocabulary. Extra statuses extend, never replace, the default set.
type Convention struct {
	statuses map[string]struct{}
}

// New builds a Convention with the default statuses plus any extras.
func New(extraStatuses ...string) *Convention {
	statuses := make(map[string]struct{}, len(DefaultStatuses)+len(extraStatuses))
	for _, s := range DefaultStatuses {
		statuses[s] = struct{}{}
	}
	for _, s := range extraStatuses {
		if s != "" {
			statuses[s] = struct{}{}
		}
	}
	return &Convention{statuses: statuses}
}

// Statuses returns the accepted vocabulary, sorted for display.
func (c *Convention) Statuses() []string {
	out := make([]string, 0, len(c.statuses))
	for s := range c.statuses {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Parse validates and decomposes a file name. Directory components are
// stripped first, so full paths can be passed directly.
func (c *Convention) Parse(filename string) (Name, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))

	ext := path.Ext(base)
	if ext == "" || ext == "." {
		return Name{}, errors.Errorf("%s: missing file extension", base)
	}
	stem := strings.TrimSuffix(base, ext)

	parts := strings.Split(stem, "_")
	if len(parts) != 4 {
		return Name{}, errors.Errorf("%s: want 4 underscore-separated fields (date, type, version, status), got %d", base, len(parts))
	}

	date, err := time.Parse(dateLayout, parts[0])
	if err != nil {
		return Name{}, errors.Errorf("%s: %q is not a valid YYYY-MM-DD date", base, parts[0])
	}

	if !typePattern.MatchString(parts[1]) {
		return Name{}, errors.Errorf("%s: type %q must be a capitalized token", base, parts[1])
	}

	if !versionPattern.MatchString(parts[2]) {
		return Name{}, errors.Errorf("%s: version %q must look like v1 or v1.2", base, parts[2])
	}

	if _, ok := c.statuses[parts[3]]; !ok {
		return Name{}, errors.Errorf("%s: status %q not in %s", base, parts[3], strings.Join(c.Statuses(), "/"))
	}

	return Name{
		Date:    date,
		DocType: parts[1],
		Version: parts[2],
		Status:  parts[3],
		Ext:     ext,
	}, nil
}

// Validate reports whether a file name conforms to the convention.
func (c *Convention) Validate(filename string) error {
	_, err := c.Parse(filename)
	return err
}

// LooksLike reports whether s has the rough shape of a versioned document
// name. The linter uses it to pick candidates out of prose; candidates that
// then fail Parse are findings.
func LooksLike(s string) bool {
	return looksLikePattern.MatchString(s)
}
