package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.Contains(t, info.GoVersion, "go")
	assert.Contains(t, info.Platform, "/")
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "1.2.0",
		GitCommit: "abc123",
		GoVersion: "go1.25.1",
		Platform:  "linux/amd64",
	}

	assert.Equal(t,
		"Version: 1.2.0, GitCommit: abc123, Go: go1.25.1, Platform: linux/amd64",
		info.String())
}

func TestInfoJSON(t *testing.T) {
	info := Info{
		Version:   "1.2.0",
		GitCommit: "abc123",
		GoVersion: "go1.25.1",
		Platform:  "linux/amd64",
	}

	jsonString, err := info.JSON()
	require.NoError(t, err)

	var parsed Info
	require.NoError(t, json.Unmarshal([]byte(jsonString), &parsed))
	assert.Equal(t, info, parsed)

	assert.Contains(t, jsonString, `"version"`)
	assert.Contains(t, jsonString, `"gitCommit"`)
	assert.Contains(t, jsonString, `"goVersion"`)
	assert.Contains(t, jsonString, `"platform"`)
}
