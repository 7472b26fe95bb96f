package skill

import (
	"bytes"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// ParseFrontmatter extracts and decodes the YAML frontmatter of a manifest.
func ParseFrontmatter(content []byte) (*Metadata, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "parsing markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	var decoded Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &decoded,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building frontmatter decoder")
	}
	if err := decoder.Decode(metaData); err != nil {
		return nil, errors.Wrap(err, "decoding frontmatter")
	}
	return &decoded, nil
}

// SplitFrontmatter separates a manifest into its raw frontmatter block (the
// text between the --- fences, fences excluded) and the body that follows.
// ok is false when no frontmatter fence opens the document.
func SplitFrontmatter(content string) (frontmatter, body string, ok bool) {
	if !strings.HasPrefix(content, "---") {
		return "", content, false
	}

	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return "", content, false
	}

	frontmatter = strings.Join(lines[1:end], "\n")
	body = strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
	return frontmatter, body, true
}

// ExtractBody strips the frontmatter and returns the instruction body.
func ExtractBody(content string) string {
	_, body, _ := SplitFrontmatter(content)
	return body
}
