package skill

import (
	"bytes"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// canonicalKeyOrder is the frontmatter key order Format normalizes to. Keys
// outside this list keep their relative order after the known ones.
var canonicalKeyOrder = []string{"name", "description", "license", "allowed-tools"}

// Format rewrites a SKILL.md so its frontmatter keys follow the canonical
// order with two-space YAML indentation. The body is untouched. It returns
// the formatted content and whether anything changed.
func Format(content []byte) ([]byte, bool, error) {
	raw, body, ok := SplitFrontmatter(string(content))
	if !ok {
		return content, false, errors.New("no frontmatter block found")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return content, false, errors.Wrap(err, "parsing frontmatter")
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return content, false, errors.New("frontmatter is not a mapping")
	}

	reorderMapping(doc.Content[0])

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc.Content[0]); err != nil {
		return content, false, errors.Wrap(err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return content, false, errors.Wrap(err, "encoding frontmatter")
	}

	// one blank line between the closing fence and the body
	var out bytes.Buffer
	out.WriteString("---\n")
	out.Write(buf.Bytes())
	out.WriteString("---\n\n")
	out.WriteString(body)

	formatted := out.Bytes()
	return formatted, !bytes.Equal(formatted, content), nil
}

// reorderMapping sorts the top-level mapping's key/value pairs into canonical
// order, preserving comments attached to each node.
func reorderMapping(mapping *yaml.Node) {
	type pair struct {
		key   *yaml.Node
		value *yaml.Node
	}

	pairs := make([]pair, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		pairs = append(pairs, pair{key: mapping.Content[i], value: mapping.Content[i+1]})
	}

	rank := func(key string) int {
		for i, k := range canonicalKeyOrder {
			if k == key {
				return i
			}
		}
		return len(canonicalKeyOrder)
	}

	// stable insertion keeps unknown keys in their original relative order
	ordered := make([]pair, 0, len(pairs))
	for _, want := range canonicalKeyOrder {
		for _, p := range pairs {
			if p.key.Value == want {
				ordered = append(ordered, p)
			}
		}
	}
	for _, p := range pairs {
		if rank(p.key.Value) == len(canonicalKeyOrder) {
			ordered = append(ordered, p)
		}
	}

	content := make([]*yaml.Node, 0, len(mapping.Content))
	for _, p := range ordered {
		content = append(content, p.key, p.value)
	}
	mapping.Content = content
}

// FormatDiff renders a unified diff between the original and formatted
// manifests, labeled with the file path.
func FormatDiff(path string, original, formatted []byte) string {
	return udiff.Unified(path, path, string(original), string(formatted))
}

// NormalizeLineEndings converts CRLF to LF so formatting and diffing behave
// the same on content authored on Windows.
func NormalizeLineEndings(content []byte) []byte {
	return []byte(strings.ReplaceAll(string(content), "\r\n", "\n"))
}
