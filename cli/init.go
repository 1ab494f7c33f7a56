package cli

import (
	"github.com/spf13/cobra"
)

// An initCommand is used to create an executable's configuration.
type initCommand struct {
	appName string
	runFunc func(cmd *cobra.Command, args []string) error
}

var _ cobraCommand = (*initCommand)(nil)

// NewInitCommand constructs a new init command for the given
// executable's appName and the runFunc implementing
// the initialization. The command has a "dir" flag naming the
// output directory and an "encoding" flag naming the config
// encoding ("toml" or "yaml").
func NewInitCommand(appName string, runFunc func(cmd *cobra.Command, args []string) error) *cobra.Command {
	initCmd := &initCommand{
		appName: appName,
		runFunc: runFunc,
	}
	return initCmd.Build()
}

// Build constructs the cobra.Command according to the
// initCommand's settings.
func (initCmd *initCommand) Build() *cobra.Command {
	cmd := cobra.Command{
		Use:   "init",
		Short: "Create a configuration file for " + initCmd.appName + ".",
		Long:  `Create a configuration file for ` + initCmd.appName + `.`,
		Args:  cobra.NoArgs,
		RunE:  initCmd.runFunc,
	}
	cmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
	cmd.Flags().StringP("encoding", "e", "toml", "Encoding of the config file (toml or yaml)")
	return &cmd
}
