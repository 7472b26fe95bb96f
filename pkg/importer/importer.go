// Package importer converts exported HTML pages into corpus Markdown.
// Brand and style guidance often arrives as HTML exports from design tools
// or wikis; importing a page rewrites it as Markdown inside the corpus tree,
// where the linter governs it like any hand-written document.
package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/logger"
)

// Result describes one imported page.
type Result struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Bytes  int    `json:"bytes"`
}

// Importer writes converted pages into a corpus directory.
type Importer struct {
	corpusDir string
	overwrite bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithCorpusDir sets the directory imported pages land in. Default docs.
func WithCorpusDir(dir string) Option {
	return func(im *Importer) { im.corpusDir = dir }
}

// WithOverwrite controls whether an existing corpus file is replaced.
// Default false.
func WithOverwrite(overwrite bool) Option {
	return func(im *Importer) { im.overwrite = overwrite }
}

// New builds an Importer.
func New(opts ...Option) *Importer {
	im := &Importer{
		corpusDir: "docs",
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportFile converts one HTML file and writes the Markdown into the corpus
// directory. The output filename is a slug of the page title, so re-imports
// of the same page converge on the same corpus file.
func (im *Importer) ImportFile(ctx context.Context, htmlPath string) (*Result, error) {
	content, err := os.ReadFile(htmlPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read html file")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html")
	}

	stem := strings.TrimSuffix(filepath.Base(htmlPath), filepath.Ext(htmlPath))
	title := pageTitle(doc, stem)

	converter := md.NewConverter("", true, nil)
	markdown := strings.TrimSpace(converter.Convert(doc.Find("body")))
	if markdown == "" {
		return nil, errors.Errorf("%s has no convertible content", htmlPath)
	}
	if !strings.HasPrefix(markdown, "# ") {
		markdown = "# " + title + "\n\n" + markdown
	}
	markdown += "\n"

	outPath := filepath.Join(im.corpusDir, slugify(title)+".md")
	if _, err := os.Stat(outPath); err == nil && !im.overwrite {
		return nil, errors.Errorf("destination %s already exists", outPath)
	}
	if err := os.MkdirAll(im.corpusDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create corpus directory")
	}
	if err := os.WriteFile(outPath, []byte(markdown), 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write corpus file")
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"source": htmlPath,
		"path":   outPath,
		"bytes":  len(markdown),
	}).Debug("imported html page into corpus")

	return &Result{
		Source: htmlPath,
		Path:   outPath,
		Title:  title,
		Bytes:  len(markdown),
	}, nil
}

// pageTitle prefers the document title, then the first heading, then the
// source filename.
func pageTitle(doc *goquery.Document, fallback string) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if h := strings.TrimSpace(doc.Find("h1").First().Text()); h != "" {
		return h
	}
	return fallback
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		return "imported-page"
	}
	return slug
}
