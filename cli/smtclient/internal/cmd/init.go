package cmd

import (
	"path"

	"github.com/emf99/zkSMT/application/client"
	"github.com/emf99/zkSMT/cli"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("the tree client", mkConfig)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("address", "a", "unix:///tmp/zksmt.sock", "Address of the tree server")
}

func mkConfig(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	encoding, _ := cmd.Flags().GetString("encoding")
	address, _ := cmd.Flags().GetString("address")
	file := path.Join(dir, "config."+encoding)

	conf := client.NewConfig(file, encoding, address)
	return conf.Save()
}
