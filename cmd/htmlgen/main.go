// htmlgen CLI - expands declarative HTML templates against JSON or YAML data
package main

import "github.com/getmockd/htmlgen/pkg/cli"

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
