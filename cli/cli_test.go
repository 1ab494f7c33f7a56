package cli

import (
	"bytes"
	"testing"

	"github.com/emf99/zkSMT/internal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand("smttest", "short", "long")
	root.AddCommand(NewVersionCommand("smttest"))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "smttest v"+internal.Version)
}

func TestRunCommandConfigFlag(t *testing.T) {
	var file, encoding string
	root := NewRootCommand("smttest", "short", "long")
	run := NewRunCommand("smttest", func(cmd *cobra.Command, args []string) error {
		file, encoding = ConfigPath(cmd)
		return nil
	})
	ConfigFlag(run, "config.toml")
	root.AddCommand(run)

	root.SetArgs([]string{"run"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "config.toml", file)
	assert.Equal(t, "toml", encoding)

	root.SetArgs([]string{"run", "-c", "/etc/zksmt/server.yml"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "/etc/zksmt/server.yml", file)
	assert.Equal(t, "yaml", encoding)

	root.SetArgs([]string{"run", "extra"})
	assert.Error(t, root.Execute())
}

func TestInitCommandFlags(t *testing.T) {
	cmd := NewInitCommand("smttest", func(*cobra.Command, []string) error { return nil })
	dir, err := cmd.Flags().GetString("dir")
	require.NoError(t, err)
	assert.Equal(t, ".", dir)
	encoding, err := cmd.Flags().GetString("encoding")
	require.NoError(t, err)
	assert.Equal(t, "toml", encoding)
}
