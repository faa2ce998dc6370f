// Package version carries build metadata injected at link time via
// -ldflags, e.g.:
//
//	go build -ldflags "-X .../version.gitVersion=v0.1.0 \
//	    -X .../version.gitCommit=$(git rev-parse HEAD) \
//	    -X .../version.buildDate=$(date -u +'%Y-%m-%dT%H:%M:%SZ')"
package version

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/gosuri/uitable"
)

var (
	// gitVersion is the semantic version, vMAJOR.MINOR.PATCH[-PRERELEASE].
	gitVersion = "v0.1.0-dev"
	// buildDate is the ISO8601 build timestamp.
	buildDate = "1970-01-01T00:00:00Z"
	// gitCommit is the full git SHA at build time.
	gitCommit = ""
	// gitTreeState is "clean" or "dirty".
	gitTreeState = ""
)

// Info describes the build of the running binary.
type Info struct {
	GitVersion   string `json:"gitVersion"`
	GitCommit    string `json:"gitCommit,omitempty"`
	GitTreeState string `json:"gitTreeState,omitempty"`
	BuildDate    string `json:"buildDate"`
	GoVersion    string `json:"goVersion"`
	Compiler     string `json:"compiler"`
	Platform     string `json:"platform"`
}

func (info Info) String() string {
	if info.GitTreeState == "dirty" {
		return info.GitVersion + "-dirty"
	}
	return info.GitVersion
}

// ToJSON returns the version info as a JSON document.
func (info Info) ToJSON() (string, error) {
	s, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal version info: %w", err)
	}
	return string(s), nil
}

// Text renders the version info as an aligned table.
func (info Info) Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.MaxColWidth = 80
	table.Separator = " "
	table.AddRow("gitVersion:", info.GitVersion)
	if info.GitCommit != "" {
		table.AddRow("gitCommit:", info.GitCommit)
	}
	if info.GitTreeState != "" {
		table.AddRow("gitTreeState:", info.GitTreeState)
	}
	table.AddRow("buildDate:", info.BuildDate)
	table.AddRow("goVersion:", info.GoVersion)
	table.AddRow("compiler:", info.Compiler)
	table.AddRow("platform:", info.Platform)
	return table.String()
}

// Get returns the build information for the running binary.
func Get() Info {
	return Info{
		GitVersion:   gitVersion,
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Compiler:     runtime.Compiler,
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
