package lint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func findingsFor(report *Report, rule string) []Finding {
	var out []Finding
	for _, f := range report.Findings {
		if f.Rule == rule {
			out = append(out, f)
		}
	}
	return out
}

func TestRunCleanCorpus(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "brand/colors.md", `# Palette

| Name | Hex | RGB |
|------|-----|-----|
| Acme Blue | #0066CC | 0, 102, 204 |
| Midnight | #1A1A2E | 26, 26, 46 |

Use `+"`2025-01-15_Report_v2_Draft.docx`"+` when naming drafts.
`)

	report, err := New().Run(root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesScanned)
	assert.Empty(t, report.Findings)
	assert.False(t, report.HasErrors())
}

func TestColorTableMismatch(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "colors.md", `| Color | Hex | RGB |
|-------|-----|-----|
| Drifted | #0066CC | 0, 102, 205 |
`)

	report, err := New().Run(root)
	require.NoError(t, err)

	findings := findingsFor(report, RulePaletteTable)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityError, findings[0].Severity)
	assert.Equal(t, 3, findings[0].Line)
	assert.Contains(t, findings[0].Message, "decodes to (0, 102, 204)")
	assert.Contains(t, findings[0].Message, "says (0, 102, 205)")
}

func TestColorTableBadHex(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"five digits", "#0066C"},
		{"shorthand", "#06C"},
		{"not hex", "#GGHHII"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeCorpusFile(t, root, "colors.md", `| Hex | RGB |
|-----|-----|
| `+tt.hex+` | 0, 102, 204 |
`)

			report, err := New().Run(root)
			require.NoError(t, err)
			findings := findingsFor(report, RulePaletteTable)
			require.Len(t, findings, 1)
			assert.Equal(t, SeverityError, findings[0].Severity)
		})
	}
}

func TestColorTableUnreadableRGB(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "colors.md", `| Hex | RGB |
|-----|-----|
| #0066CC | see above |
`)

	report, err := New().Run(root)
	require.NoError(t, err)

	findings := findingsFor(report, RulePaletteTable)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.False(t, report.HasErrors())
}

func TestTableWithoutColorColumnsIgnored(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "sizes.md", `| Element | Size |
|---------|------|
| Body | 11pt |
`)

	report, err := New().Run(root)
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
}

func TestNamingExamples(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "naming.md", `# Naming

Good: `+"`2025-01-15_Report_v2_Draft.docx`"+`

Typo: `+"`2025-01-15_Report_v2_Fnal.docx`"+`

❌ `+"`2025-01-15_Report_v2_Wrong.docx`"+` (counter-example, skipped)

Not a document name: `+"`validate_brand.py`"+`
`)

	report, err := New().Run(root)
	require.NoError(t, err)

	findings := findingsFor(report, RuleNamingExample)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "2025-01-15_Report_v2_Fnal.docx")
	assert.Equal(t, SeverityError, findings[0].Severity)
}

func TestNamingExampleInsideTable(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "naming.md", `| Example | Meaning |
|---------|---------|
| `+"`2025-03-01_Proposal_v1_Review.pdf`"+` | fine |
| `+"`2025-03-01_proposal_v1_Review.pdf`"+` | lowercase type |
`)

	report, err := New().Run(root)
	require.NoError(t, err)

	findings := findingsFor(report, RuleNamingExample)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "capitalized")
}

func TestBannedTokens(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "guide.md", `Line one is fine.
Never use Comic Sans in a deck.
WordArt is also out.
`)

	report, err := New().Run(root)
	require.NoError(t, err)

	findings := findingsFor(report, RuleBannedToken)
	require.Len(t, findings, 2)
	assert.Equal(t, 2, findings[0].Line)
	assert.Contains(t, findings[0].Message, "Comic Sans")
	assert.Equal(t, 3, findings[1].Line)
	assert.Contains(t, findings[1].Message, "WordArt")
	assert.True(t, report.HasErrors())
}

func TestBannedTokenCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "guide.md", "avoid COMIC SANS everywhere\n")

	report, err := New().Run(root)
	require.NoError(t, err)
	assert.Len(t, findingsFor(report, RuleBannedToken), 1)
}

func TestSkillManifestCheck(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "skills/broken/SKILL.md", `---
name: broken
---

body
`)
	writeCorpusFile(t, root, "skills/fine/SKILL.md", `---
name: fine
description: Has everything required
---

body
`)

	report, err := New().Run(root)
	require.NoError(t, err)

	findings := findingsFor(report, RuleSkillManifest)
	require.Len(t, findings, 1)
	assert.Equal(t, "skills/broken/SKILL.md", findings[0].File)
	assert.Contains(t, findings[0].Message, "description")
}

func TestExcludesSkipOutputsTree(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "outputs/report.md", "Comic Sans everywhere\n")
	writeCorpusFile(t, root, "docs/clean.md", "nothing to see\n")

	report, err := New().Run(root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesScanned)
	assert.Empty(t, report.Findings)
}

func TestCustomIncludes(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "docs/a.md", "Comic Sans\n")
	writeCorpusFile(t, root, "notes/b.md", "Comic Sans\n")

	linter := New(WithIncludes("docs/**/*.md"))
	report, err := linter.Run(root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesScanned)
	assert.Len(t, report.Findings, 1)
	assert.Equal(t, "docs/a.md", report.Findings[0].File)
}

func TestFindingString(t *testing.T) {
	f := Finding{File: "a.md", Line: 3, Severity: SeverityError, Rule: RuleBannedToken, Message: `banned token "WordArt"`}
	assert.Equal(t, `a.md:3: error: banned token "WordArt" [banned-token]`, f.String())
}

func TestReportJSON(t *testing.T) {
	report := &Report{
		Findings: []Finding{
			{File: "a.md", Line: 1, Severity: SeverityWarning, Rule: RulePaletteTable, Message: "m"},
		},
		FilesScanned: 4,
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"files_scanned":4`)
	assert.Contains(t, string(data), `"severity":"warning"`)

	assert.Equal(t, 0, report.Errors())
	assert.Equal(t, 1, report.Warnings())
	assert.False(t, report.HasErrors())
}
