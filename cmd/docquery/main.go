// Command docquery compiles and runs derived repository queries against a
// SQLite document store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/docquery/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
