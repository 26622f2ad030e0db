// Command orgfake runs queries and scenarios against an in-memory
// organization service.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/orgfake/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
