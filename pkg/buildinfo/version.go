// Package buildinfo holds the release stamp printed by "lethalposters --version".
//
// Local builds report "dev". Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/lethalposters/pkg/buildinfo.Version=$(git describe --tags) \
//	    -X github.com/matzehuels/lethalposters/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/lethalposters/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)" \
//	    ./cmd/lethalposters
package buildinfo

import "fmt"

var (
	Version = "dev"     // release tag, e.g. "v1.2.0"
	Commit  = "none"    // short git commit
	Date    = "unknown" // UTC build date
)

// String returns a one-line description such as "v1.2.0 (3f2c1ab, 2025-01-31)".
// Unstamped builds return just the version.
func String() string {
	if Commit == "none" && Date == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}

// Template returns the version template for the root cobra command.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
