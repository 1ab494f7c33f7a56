// Executable tree client. Run "smtclient init" to create a config,
// then any of the operations, or "smtclient run" for a REPL.
package main

import (
	"github.com/emf99/zkSMT/cli"
	"github.com/emf99/zkSMT/cli/smtclient/internal/cmd"
)

func main() {
	cli.Execute(cmd.RootCmd)
}
