// Command dirmap scans directories and lays their sizes out as treemaps.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dirmap/internal/cli"
)

// version is injected at build time via -ldflags.
var version = "unknown - unofficial build"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
