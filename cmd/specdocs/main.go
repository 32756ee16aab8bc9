// specdocs CLI - serves an OpenAPI document over JSON-RPC
package main

import (
	"os"

	"github.com/getmockd/specdocs/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	os.Exit(cli.Execute())
}
