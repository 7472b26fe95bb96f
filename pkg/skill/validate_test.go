package skill

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanPackage(t *testing.T) {
	dir := writeSkill(t, filepath.Join(t.TempDir(), "clean-skill"), `---
name: clean-skill
description: A package that passes every check
---

# Clean Skill

Instructions go here.
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "helper.py"), []byte("pass\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "REFERENCE.md"), []byte("# Reference\n"), 0o644))

	result := Validate(dir)
	assert.True(t, result.Valid())
	assert.NoError(t, result.Err())
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "clean-skill", result.Name)
	assert.True(t, result.HasScripts)
	assert.True(t, result.HasReference)
	assert.Equal(t, 3, result.FileCount)
	assert.Greater(t, result.TotalSize, int64(0))
}

func TestValidateMissingManifest(t *testing.T) {
	result := Validate(t.TempDir())
	assert.False(t, result.Valid())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing SKILL.md")
}

func TestValidateMissingDirectory(t *testing.T) {
	result := Validate(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, result.Valid())
}

func TestValidateNameRules(t *testing.T) {
	tests := []struct {
		name     string
		dirName  string
		metaName string
		wantErr  string
	}{
		{
			name:     "uppercase rejected",
			dirName:  "My-Skill",
			metaName: "My-Skill",
			wantErr:  "lowercase",
		},
		{
			name:     "underscores rejected",
			dirName:  "my_skill",
			metaName: "my_skill",
			wantErr:  "lowercase",
		},
		{
			name:     "double hyphen rejected",
			dirName:  "my--skill",
			metaName: "my--skill",
			wantErr:  "lowercase",
		},
		{
			name:     "leading hyphen rejected",
			dirName:  "-skill",
			metaName: "-skill",
			wantErr:  "lowercase",
		},
		{
			name:     "directory mismatch",
			dirName:  "some-dir",
			metaName: "other-name",
			wantErr:  "does not match directory",
		},
		{
			name:     "too long",
			dirName:  strings.Repeat("a", 65),
			metaName: strings.Repeat("a", 65),
			wantErr:  "limit 64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSkill(t, filepath.Join(t.TempDir(), tt.dirName), "---\nname: "+tt.metaName+"\ndescription: d\n---\nbody\n")
			result := Validate(dir)
			assert.False(t, result.Valid())
			assert.Contains(t, strings.Join(result.Errors, "\n"), tt.wantErr)
		})
	}
}

func TestValidateMissingFields(t *testing.T) {
	t.Run("no name", func(t *testing.T) {
		dir := writeSkill(t, filepath.Join(t.TempDir(), "anon"), "---\ndescription: d\n---\nbody\n")
		result := Validate(dir)
		assert.False(t, result.Valid())
		assert.Contains(t, strings.Join(result.Errors, "\n"), `missing required field "name"`)
	})

	t.Run("no description", func(t *testing.T) {
		dir := writeSkill(t, filepath.Join(t.TempDir(), "terse"), "---\nname: terse\n---\nbody\n")
		result := Validate(dir)
		assert.False(t, result.Valid())
		assert.Contains(t, strings.Join(result.Errors, "\n"), `missing required field "description"`)
	})
}

func TestValidateDescriptionLength(t *testing.T) {
	long := strings.Repeat("x", MaxDescriptionLength+1)
	dir := writeSkill(t, filepath.Join(t.TempDir(), "wordy"), "---\nname: wordy\ndescription: "+long+"\n---\nbody\n")

	result := Validate(dir)
	assert.False(t, result.Valid())
	assert.Contains(t, strings.Join(result.Errors, "\n"), "limit 1024")
}

func TestValidateFrontmatterSizeWarning(t *testing.T) {
	padding := "padding: " + strings.Repeat("y", MaxFrontmatterBytes)
	dir := writeSkill(t, filepath.Join(t.TempDir(), "heavy"), "---\nname: heavy\ndescription: d\n"+padding+"\n---\nbody\n")

	result := Validate(dir)
	assert.True(t, result.Valid())
	assert.Contains(t, strings.Join(result.Warnings, "\n"), "advisory limit")
}

func TestValidateEmptyBodyWarning(t *testing.T) {
	dir := writeSkill(t, filepath.Join(t.TempDir(), "hollow"), "---\nname: hollow\ndescription: d\n---\n\n")

	result := Validate(dir)
	assert.True(t, result.Valid())
	assert.Contains(t, strings.Join(result.Warnings, "\n"), "no body")
}

func TestValidatePackageSizeLimit(t *testing.T) {
	dir := writeSkill(t, filepath.Join(t.TempDir(), "bulky"), `---
name: bulky
description: Carries a file past the size cap
---
body
`)
	big := bytes.Repeat([]byte("0123456789abcdef"), (MaxPackageBytes/16)+1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets.bin"), big, 0o644))

	result := Validate(dir)
	assert.False(t, result.Valid())
	assert.Contains(t, strings.Join(result.Errors, "\n"), "limit 8388608")
}

func TestValidateSymlinkEscape(t *testing.T) {
	tmpDir := t.TempDir()
	outside := filepath.Join(tmpDir, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("not part of the package"), 0o644))

	dir := writeSkill(t, filepath.Join(tmpDir, "leaky"), `---
name: leaky
description: Links outside its own root
---
body
`)
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "leak.txt")))

	result := Validate(dir)
	assert.False(t, result.Valid())
	assert.Contains(t, strings.Join(result.Errors, "\n"), "escapes the package root")
}

func TestValidateInternalSymlinkAllowed(t *testing.T) {
	dir := writeSkill(t, filepath.Join(t.TempDir(), "self-ref"), `---
name: self-ref
description: Links within its own root
---
body
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), []byte("inside"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "data.txt"), filepath.Join(dir, "alias.txt")))

	result := Validate(dir)
	assert.True(t, result.Valid(), "errors: %v", result.Errors)
}

func TestValidateAll(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, filepath.Join(tmpDir, "good-one"), `---
name: good-one
description: Passes
---
body
`)
	writeSkill(t, filepath.Join(tmpDir, "bad-one"), `---
name: mismatch
description: Name does not match its directory
---
body
`)

	discovery, err := NewDiscovery(WithRoots(tmpDir))
	require.NoError(t, err)

	results, err := ValidateAll(discovery)
	require.NoError(t, err)
	require.Len(t, results, 2)

	valid := 0
	for _, r := range results {
		if r.Valid() {
			valid++
		}
	}
	assert.Equal(t, 1, valid)
}
