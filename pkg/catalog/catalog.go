// Package catalog is the shared read-model over skill discovery and
// validation. The serve, browse, and mcp surfaces all present the same
// entries, so the assembly lives here rather than in each frontend.
package catalog

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/skill"
)

// ErrNotFound reports a skill name that no configured root contains.
var ErrNotFound = errors.New("skill not found")

// Entry is one catalog row: the manifest summary plus validation state.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Directory   string `json:"directory"`
	Valid       bool   `json:"valid"`
	Errors      int    `json:"errors"`
	Warnings    int    `json:"warnings"`
	FileCount   int    `json:"file_count"`
	TotalSize   int64  `json:"total_size"`
	HasScripts  bool   `json:"has_scripts"`
}

// Detail is the full view of one skill: catalog entry, manifest extras, the
// body on demand, and the validation findings spelled out.
type Detail struct {
	Entry
	License      string   `json:"license,omitempty"`
	AllowedTools []string `json:"allowed_tools,omitempty"`
	Body         string   `json:"body"`
	Files        []string `json:"files"`
	ErrorList    []string `json:"error_list,omitempty"`
	WarningList  []string `json:"warning_list,omitempty"`
}

// Catalog assembles entries from a discovery.
type Catalog struct {
	discovery *skill.Discovery
}

// New builds a Catalog over the given discovery.
func New(d *skill.Discovery) *Catalog {
	return &Catalog{discovery: d}
}

// List returns every discovered skill as a catalog entry, sorted by name.
func (c *Catalog) List() ([]Entry, error) {
	skills, err := c.discovery.List()
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover skills")
	}

	entries := make([]Entry, 0, len(skills))
	for _, s := range skills {
		entries = append(entries, entryFor(s))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Get returns the full view of one skill by name.
func (c *Catalog) Get(name string) (*Detail, error) {
	s, err := c.discovery.Get(name)
	if err != nil {
		return nil, ErrNotFound
	}

	body, err := s.Body()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read body of %s", name)
	}
	files, err := s.Files()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list files of %s", name)
	}

	result := skill.Validate(s.Directory)
	return &Detail{
		Entry:        entryWithValidation(s, result),
		License:      s.License,
		AllowedTools: s.AllowedTools,
		Body:         body,
		Files:        files,
		ErrorList:    result.Errors,
		WarningList:  result.Warnings,
	}, nil
}

func entryFor(s *skill.Skill) Entry {
	return entryWithValidation(s, skill.Validate(s.Directory))
}

func entryWithValidation(s *skill.Skill, result *skill.ValidationResult) Entry {
	return Entry{
		Name:        s.Name,
		Description: s.Description,
		Directory:   s.Directory,
		Valid:       result.Valid(),
		Errors:      len(result.Errors),
		Warnings:    len(result.Warnings),
		FileCount:   result.FileCount,
		TotalSize:   result.TotalSize,
		HasScripts:  result.HasScripts,
	}
}
