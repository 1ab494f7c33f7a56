// Executable tree server. Run "smtserver init" to create a config
// and "smtserver run" to serve it.
package main

import (
	"github.com/emf99/zkSMT/cli"
	"github.com/emf99/zkSMT/cli/smtserver/internal/cmd"
)

func main() {
	cli.Execute(cmd.RootCmd)
}
