// Package cli provides the cobra command builders shared by the
// executables of the tree service.
package cli

import (
	"github.com/spf13/cobra"
)

// cobraCommand is used to implement any type of cobra command
// for any of the command-line tools and executables.
type cobraCommand interface {
	Build() *cobra.Command
}
