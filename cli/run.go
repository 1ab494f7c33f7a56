package cli

import (
	"github.com/emf99/zkSMT/application"
	"github.com/spf13/cobra"
)

// A runCommand is used to create an executable's
// main functionality.
type runCommand struct {
	appName string
	runFunc func(cmd *cobra.Command, args []string) error
}

var _ cobraCommand = (*runCommand)(nil)

// NewRunCommand constructs a new run command for the given
// executable's appName and the runFunc implementing
// the main functionality.
func NewRunCommand(appName string, runFunc func(cmd *cobra.Command, args []string) error) *cobra.Command {
	runCmd := &runCommand{
		appName: appName,
		runFunc: runFunc,
	}
	return runCmd.Build()
}

// Build constructs the cobra.Command according to the
// runCommand's settings.
func (runCmd *runCommand) Build() *cobra.Command {
	cmd := cobra.Command{
		Use:   "run",
		Short: "Run a " + runCmd.appName + " instance.",
		Long: `Run a ` + runCmd.appName + ` instance.

This will look for config files with default names
in the current directory if not specified differently.
	`,
		Args: cobra.NoArgs,
		RunE: runCmd.runFunc,
	}
	return &cmd
}

// ConfigFlag adds the persistent "config" flag to cmd with the
// given default file name.
func ConfigFlag(cmd *cobra.Command, defaultFile string) {
	cmd.PersistentFlags().StringP("config", "c", defaultFile,
		"Path to the configuration file (.toml, .yaml or .yml)")
}

// ConfigPath returns the value of the "config" flag of cmd and the
// encoding its extension selects.
func ConfigPath(cmd *cobra.Command) (string, string) {
	file, _ := cmd.Flags().GetString("config")
	return file, application.EncodingFor(file)
}
