// Package cmd implements the CLI commands for the tree client.
package cmd

import (
	"github.com/emf99/zkSMT/cli"
)

// RootCmd represents the base "smtclient" command when called without any
// subcommands (insert, root, prove-user, ...).
var RootCmd = cli.NewRootCommand("smtclient",
	"Authenticated key-value tree client",
	`smtclient talks to a tree server: it mutates the tree, fetches roots
and witnesses, requests and verifies proof envelopes, and builds
username proofs locally from what the server discloses.`)

func init() {
	cli.ConfigFlag(RootCmd, "config.toml")
}
