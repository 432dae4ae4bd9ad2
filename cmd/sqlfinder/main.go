// Command sqlfinder composes and runs finders declared in CUE.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sqlfinder/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
