// Command loco merges timestamped log files into one ordered history and
// searches it for repeating sequences of events.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/loco/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	// ExitErrors have already been reported through the output formatter.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(cli.GetExitCode(err))
}
