package skill

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed templates/*
var templateFS embed.FS

const manifestTemplate = "templates/SKILL.md.tmpl"

type scaffoldData struct {
	Name        string
	Description string
	Title       string
}

// Scaffold creates a new skill package at root/name with a starter SKILL.md.
// The name must already satisfy the packaging rules; refusing bad names here
// beats discovering them at publish time.
func Scaffold(root, name, description string) (string, error) {
	if !nameRe.MatchString(name) {
		return "", errors.Errorf("name %q must be lowercase letters, digits, and single hyphens", name)
	}
	if len(name) > MaxNameLength {
		return "", errors.Errorf("name %q is %d characters (limit %d)", name, len(name), MaxNameLength)
	}
	if description == "" {
		return "", errors.New("description is required")
	}
	if len(description) > MaxDescriptionLength {
		return "", errors.Errorf("description is %d characters (limit %d)", len(description), MaxDescriptionLength)
	}

	dir := filepath.Join(root, name)
	if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
		return "", errors.Errorf("%s already exists in %s", ManifestName, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating skill directory")
	}

	content, err := renderManifest(name, description)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), content, 0o644); err != nil {
		return "", errors.Wrap(err, "writing manifest")
	}
	return dir, nil
}

func renderManifest(name, description string) ([]byte, error) {
	tmplContent, err := templateFS.ReadFile(manifestTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest template")
	}

	tmpl, err := template.New("manifest").Parse(string(tmplContent))
	if err != nil {
		return nil, errors.Wrap(err, "parsing manifest template")
	}

	var buf bytes.Buffer
	data := scaffoldData{
		Name:        name,
		Description: description,
		Title:       titleFromName(name),
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "rendering manifest template")
	}
	return buf.Bytes(), nil
}

// titleFromName turns "pdf-form-filler" into "Pdf Form Filler".
func titleFromName(name string) string {
	parts := strings.Split(name, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
