package cmd

import (
	"github.com/emf99/zkSMT/cli"
)

var versionCmd = cli.NewVersionCommand("smtclient")

func init() {
	RootCmd.AddCommand(versionCmd)
}
