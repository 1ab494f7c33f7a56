package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/emf99/zkSMT/application/server"
	"github.com/emf99/zkSMT/cli"
	"github.com/spf13/cobra"
)

var runCmd = cli.NewRunCommand("tree server", run)

func init() {
	RootCmd.AddCommand(runCmd)
	cli.ConfigFlag(runCmd, "config.toml")
	runCmd.Flags().BoolP("pid", "p", false, "Write down the process id to smtserver.pid in the current working directory")
}

func run(cmd *cobra.Command, args []string) error {
	file, encoding := cli.ConfigPath(cmd)
	if pid, _ := cmd.Flags().GetBool("pid"); pid {
		if err := writePID(); err != nil {
			return err
		}
	}

	conf := &server.Config{}
	if err := conf.Load(file, encoding); err != nil {
		return err
	}
	serv, err := server.NewTreeServer(conf)
	if err != nil {
		return err
	}

	// run the server until receiving an interrupt signal
	if err := serv.Run(conf.Addresses); err != nil {
		serv.Shutdown()
		return err
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	return serv.Shutdown()
}

func writePID() error {
	pidf, err := os.OpenFile(path.Join(".", "smtserver.pid"), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("Cannot create smtserver.pid: %v", err)
	}
	defer pidf.Close()
	if _, err := fmt.Fprint(pidf, os.Getpid()); err != nil {
		return fmt.Errorf("Cannot write to pid file: %v", err)
	}
	return nil
}
