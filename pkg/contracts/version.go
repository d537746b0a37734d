package contracts

import "fmt"

// RecordFormat names the JSON record layout served by the report endpoints.
// Bump it when column labels or key order change.
const RecordFormat = "v1"

// Stamped by build.go through -ldflags -X.
var (
	Version   = "1.2.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionString is the one-line banner printed by the command line tools
func VersionString(name string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", name, Version, GitCommit, BuildTime)
}
