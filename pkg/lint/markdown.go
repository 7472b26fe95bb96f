package lint

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/skillet-ai/skillet/pkg/brand"
	"github.com/skillet-ai/skillet/pkg/naming"
)

var rgbTripleRe = regexp.MustCompile(`(\d{1,3})\D+(\d{1,3})\D+(\d{1,3})`)

// checkMarkdown parses the document and applies the structural checks:
// palette tables and naming examples.
func (l *Linter) checkMarkdown(rel string, content []byte, report *Report) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(content))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *east.Table:
			l.checkColorTable(rel, content, node, report)
		case *ast.CodeSpan:
			l.checkNamingExample(rel, content, node, report)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}

// checkColorTable verifies every row of a table that declares both a hex and
// an RGB column: the hex code must be six digits and must decode to exactly
// the RGB triple beside it.
func (l *Linter) checkColorTable(rel string, source []byte, table *east.Table, report *Report) {
	header, ok := table.FirstChild().(*east.TableHeader)
	if !ok {
		return
	}

	hexCol, rgbCol := -1, -1
	col := 0
	for cell := header.FirstChild(); cell != nil; cell = cell.NextSibling() {
		label := strings.ToLower(textOf(cell, source))
		switch {
		case strings.Contains(label, "hex"):
			hexCol = col
		case strings.Contains(label, "rgb"):
			rgbCol = col
		}
		col++
	}
	if hexCol < 0 || rgbCol < 0 {
		return
	}

	for row := header.NextSibling(); row != nil; row = row.NextSibling() {
		tr, ok := row.(*east.TableRow)
		if !ok {
			continue
		}
		var cells []ast.Node
		for cell := tr.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, cell)
		}
		if hexCol >= len(cells) || rgbCol >= len(cells) {
			continue
		}

		hexText := strings.TrimSpace(textOf(cells[hexCol], source))
		rgbText := strings.TrimSpace(textOf(cells[rgbCol], source))
		line := lineAt(source, firstOffset(cells[hexCol]))

		r, g, b, err := brand.ParseHex(hexText)
		if err != nil {
			report.add(rel, line, SeverityError, RulePaletteTable, "hex %q: %v", hexText, err)
			continue
		}
		rr, gg, bb, ok := parseRGBTriple(rgbText)
		if !ok {
			report.add(rel, line, SeverityWarning, RulePaletteTable, "cannot read RGB cell %q", rgbText)
			continue
		}
		if r != rr || g != gg || b != bb {
			report.add(rel, line, SeverityError, RulePaletteTable,
				"hex %s decodes to (%d, %d, %d) but the RGB column says (%d, %d, %d)", hexText, r, g, b, rr, gg, bb)
		}
	}
}

// checkNamingExample parses inline-code spans shaped like versioned document
// names. Counter-examples are part of the tutorial genre; a span on a line
// marked with ❌ or lint-ignore is skipped.
func (l *Linter) checkNamingExample(rel string, source []byte, span *ast.CodeSpan, report *Report) {
	example := strings.TrimSpace(textOf(span, source))
	if !naming.LooksLike(example) {
		return
	}

	offset := firstOffset(span)
	lineText := lineTextAt(source, offset)
	if strings.Contains(lineText, "❌") || strings.Contains(strings.ToLower(lineText), "lint-ignore") {
		return
	}

	if _, err := l.convention.Parse(example); err != nil {
		report.add(rel, lineAt(source, offset), SeverityError, RuleNamingExample,
			"naming example %q does not parse: %v", example, err)
	}
}

func parseRGBTriple(s string) (r, g, b uint8, ok bool) {
	m := rgbTripleRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, false
	}
	vals := make([]uint8, 3)
	for i, part := range m[1:] {
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return 0, 0, 0, false
		}
		vals[i] = uint8(n)
	}
	return vals[0], vals[1], vals[2], true
}

// textOf flattens the text content of a node and its descendants.
func textOf(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// firstOffset returns the source offset of the first text descendant, or -1.
func firstOffset(n ast.Node) int {
	offset := -1
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || offset >= 0 {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			offset = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return offset
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(source []byte, offset int) int {
	if offset < 0 || offset > len(source) {
		return 0
	}
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

// lineTextAt returns the full text of the line containing offset.
func lineTextAt(source []byte, offset int) string {
	if offset < 0 || offset > len(source) {
		return ""
	}
	start := bytes.LastIndexByte(source[:offset], '\n') + 1
	end := bytes.IndexByte(source[offset:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += offset
	}
	return string(source[start:end])
}
