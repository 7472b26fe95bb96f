package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-ai/skillet/pkg/skill"
)

func seedSkills(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	budget := filepath.Join(root, "budget-builder")
	require.NoError(t, os.MkdirAll(filepath.Join(budget, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(budget, "SKILL.md"), []byte(`---
name: budget-builder
description: Builds branded budget spreadsheets from raw figures.
license: MIT
---

# Budget Builder

Use the scripts to lay out the workbook.
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(budget, "scripts", "build.py"), []byte("pass\n"), 0o644))

	// Manifest name disagrees with the directory, so validation fails.
	broken := filepath.Join(root, "broken-skill")
	require.NoError(t, os.MkdirAll(broken, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "SKILL.md"), []byte(`---
name: something-else
description: A package whose name does not match its directory.
---

Body.
`), 0o644))

	return root
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	d, err := skill.NewDiscovery(skill.WithRoots(seedSkills(t)))
	require.NoError(t, err)
	return New(d)
}

func TestList(t *testing.T) {
	c := newTestCatalog(t)

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "budget-builder", entries[0].Name)
	assert.True(t, entries[0].Valid)
	assert.True(t, entries[0].HasScripts)
	assert.Equal(t, 2, entries[0].FileCount)

	assert.Equal(t, "something-else", entries[1].Name)
	assert.False(t, entries[1].Valid)
	assert.NotZero(t, entries[1].Errors)
}

func TestGet(t *testing.T) {
	c := newTestCatalog(t)

	detail, err := c.Get("budget-builder")
	require.NoError(t, err)
	assert.Equal(t, "MIT", detail.License)
	assert.Contains(t, detail.Body, "# Budget Builder")
	assert.Contains(t, detail.Files, "SKILL.md")
	assert.Contains(t, detail.Files, "scripts/build.py")
	assert.Empty(t, detail.ErrorList)
}

func TestGetNotFound(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Get("no-such-skill")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
