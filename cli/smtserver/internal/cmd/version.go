package cmd

import (
	"github.com/emf99/zkSMT/cli"
)

var versionCmd = cli.NewVersionCommand("smtserver")

func init() {
	RootCmd.AddCommand(versionCmd)
}
