// apistub CLI - serves simulated third-party APIs for tests.
package main

import (
	"fmt"
	"os"

	"github.com/apistub/apistub/pkg/cli"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
