package cmd

import (
	"fmt"
	"time"

	"github.com/emf99/zkSMT/application/client"
	"github.com/emf99/zkSMT/cli"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"
)

const configMissingUsage = `
Couldn't load client's config-file.

To create a valid config, run
  smtclient init
this creates a config.toml file which points to the server's
Unix socket.

The client looks for a file called 'config.toml' in its current working directory.
If you prefer the config-file to be named or stored somewhere different you can
specify where to look for the config with the --config flag. For example:
 smtclient root --config /etc/zksmt/client.yaml
`

func loadConfig(cmd *cobra.Command) (*client.Config, error) {
	file, encoding := cli.ConfigPath(cmd)
	conf := &client.Config{}
	if err := conf.Load(file, encoding); err != nil {
		return nil, fmt.Errorf("%v\n%s", err, configMissingUsage)
	}
	return conf, nil
}

// append "\r\n" to msg and then write to terminal in raw mode.
func writeLineInRawMode(term *terminal.Terminal, msg string, printTimestamp bool) {
	if printTimestamp {
		term.Write([]byte("<" + time.Now().Format("15:04:05.999999999") + "> "))
	}
	term.Write([]byte(msg + "\r\n"))
}
