// Package buildinfo reports the version codegraph was built as.
//
// The variables are stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/codegraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/codegraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/codegraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Stamped at link time; the defaults identify a local build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build identity as served by the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current returns the stamped build identity.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String renders i on three lines.
func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template is the cobra version template for the root command.
func Template() string {
	return "{{.Name}} " + Current().String() + "\n"
}

// UserAgent returns the User-Agent sent to the vectorizer backend.
func UserAgent() string {
	return "codegraph/" + Version
}
