// Command wizard fills in the course feedback wizard from a terminal, either
// against a running wizardd server or directly on a local database.
package main

import (
	"os"

	"github.com/example/coursewizard/cmd/wizard/internal/cli"
	"github.com/example/coursewizard/cmd/wizard/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
