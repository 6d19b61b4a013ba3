// Command pathq compiles path-query selectors into SPARQL SELECT queries.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/pathq/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own errors before returning an ExitError.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
