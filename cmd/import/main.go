// Command import converts diagram text formats to branch JSON.
package main

import (
	"os"

	"branch/cli"
)

func main() {
	cmd := cli.NewImportCommand()
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		cli.Bad.Fprintf(os.Stderr, "import: %v\n", err)
		os.Exit(1)
	}
}
