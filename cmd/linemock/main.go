// linemock is a local emulator for the Fieldline mission API.
package main

import "github.com/fieldlinehq/linemock/pkg/cli"

// Build-time variables set via ldflags
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.BuildDate = buildDate
	cli.Execute()
}
