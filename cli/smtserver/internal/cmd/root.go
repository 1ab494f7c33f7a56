// Package cmd implements the CLI commands for the tree server.
package cmd

import (
	"github.com/emf99/zkSMT/cli"
)

// RootCmd represents the base "smtserver" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("smtserver",
	"Authenticated key-value tree server",
	`smtserver maintains an authenticated key-value tree and serves its
root, witnesses, proof envelopes and verification over TLS and Unix
sockets.`)
