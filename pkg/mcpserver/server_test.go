package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-ai/skillet/pkg/brand"
	"github.com/skillet-ai/skillet/pkg/lint"
	"github.com/skillet-ai/skillet/pkg/skill"
)

const validManifest = `---
name: budget-builder
description: Build branded budget spreadsheets from transaction exports.
---

# Budget Builder

1. Read the export.
2. Produce the workbook.
`

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func writeCorpusFile(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func TestValidateSkillTool(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "budget-builder")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, skill.ManifestName), []byte(validManifest), 0o644))

	s := New(Config{})
	result, err := s.handleValidateSkill(context.Background(), callRequest("validate_skill", map[string]any{
		"directory": dir,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var vr skill.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &vr))
	assert.Equal(t, "budget-builder", vr.Name)
	assert.Empty(t, vr.Errors)
	assert.Equal(t, 1, vr.FileCount)
}

func TestValidateSkillToolInvalidPackage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty-skill")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	s := New(Config{})
	result, err := s.handleValidateSkill(context.Background(), callRequest("validate_skill", map[string]any{
		"directory": dir,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var vr skill.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &vr))
	assert.NotEmpty(t, vr.Errors)
}

func TestValidateSkillToolMissingArgument(t *testing.T) {
	s := New(Config{})
	result, err := s.handleValidateSkill(context.Background(), callRequest("validate_skill", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "directory")
}

func TestLintCorpusToolDefaultRoot(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "clean.md", "# Clean\n\nNothing to see.\n")
	writeCorpusFile(t, corpus, "fonts.md", "# Fonts\n\nHeadlines are set in Comic Sans.\n")

	s := New(Config{CorpusRoot: corpus})
	result, err := s.handleLintCorpus(context.Background(), callRequest("lint_corpus", map[string]any{}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var report lint.Report
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &report))
	assert.Equal(t, 2, report.FilesScanned)
	require.Len(t, report.Findings, 1)
	assert.Contains(t, report.Findings[0].Message, "Comic Sans")
}

func TestLintCorpusToolExplicitRoot(t *testing.T) {
	other := t.TempDir()
	writeCorpusFile(t, other, "guide.md", "# Guide\n\nAll good here.\n")

	s := New(Config{CorpusRoot: t.TempDir()})
	result, err := s.handleLintCorpus(context.Background(), callRequest("lint_corpus", map[string]any{
		"root": other,
	}))
	require.NoError(t, err)

	var report lint.Report
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &report))
	assert.Equal(t, 1, report.FilesScanned)
	assert.Empty(t, report.Findings)
}

func TestCheckBrandToolContent(t *testing.T) {
	s := New(Config{})
	result, err := s.handleCheckBrand(context.Background(), callRequest("check_brand", map[string]any{
		"content": "The header uses #FF0000 for emphasis.",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var report brand.Report
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &report))
	assert.GreaterOrEqual(t, report.Violations, 1)
	assert.Less(t, report.Score, 100)
	assert.False(t, report.Compliant())
}

func TestCheckBrandToolPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copy.md")
	require.NoError(t, os.WriteFile(path, []byte("Acme Blue #0066CC everywhere.\n"), 0o644))

	s := New(Config{})
	result, err := s.handleCheckBrand(context.Background(), callRequest("check_brand", map[string]any{
		"path": path,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var report brand.Report
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &report))
	assert.Equal(t, 0, report.Violations)
	assert.True(t, report.Compliant())
}

func TestCheckBrandToolArgumentErrors(t *testing.T) {
	s := New(Config{})

	result, err := s.handleCheckBrand(context.Background(), callRequest("check_brand", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "required")

	result, err = s.handleCheckBrand(context.Background(), callRequest("check_brand", map[string]any{
		"content": "x",
		"path":    "y",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "not both")

	result, err = s.handleCheckBrand(context.Background(), callRequest("check_brand", map[string]any{
		"path": filepath.Join(t.TempDir(), "missing.md"),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
