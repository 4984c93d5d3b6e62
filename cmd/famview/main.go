// famview is the command-line interface to a repeating-event detection
// catalog: family listings, occurrence layouts, and analysis reports.
package main

import (
	"os"

	"github.com/seistrack/famview/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
