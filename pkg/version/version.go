// Package version exposes build-time version metadata for the skillet binary.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
)

var (
	// Version is the skillet release version, set at build time via ldflags.
	Version = "dev"

	// GitCommit is the git commit SHA that was built, set at build time.
	GitCommit = "unknown"
)

// Info holds the resolved version metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders a single-line human-readable form.
func (i Info) String() string {
	return fmt.Sprintf("Version: %s, GitCommit: %s, Go: %s, Platform: %s",
		i.Version, i.GitCommit, i.GoVersion, i.Platform)
}

// JSON renders the version info as indented JSON.
func (i Info) JSON() (string, error) {
	bytes, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
