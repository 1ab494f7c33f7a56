package cmd

import (
	"os"
	"strings"

	"github.com/emf99/zkSMT/cli"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"
)

var runCmd = cli.NewRunCommand("tree client", run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Long = "Run gives you a REPL, so that you can invoke the tree operations interactively. Currently, it supports:\r\n" + help()
	runCmd.Flags().BoolP("debug", "d", false, "Turn on debugging mode")
}

func help() string {
	var b strings.Builder
	for _, op := range operations {
		b.WriteString("- " + op.use + ":\r\n\t" + op.short + "\r\n")
	}
	b.WriteString("- enable timestamp:\r\n\tPrint timestamp of format <15:04:05.999999999> along with the result.\r\n")
	b.WriteString("- disable timestamp:\r\n\tDisable timestamp printing.\r\n")
	b.WriteString("- help:\r\n\tDisplay this message.\r\n")
	b.WriteString("- exit, q:\r\n\tClose the REPL and exit the client.")
	return b.String()
}

func run(cmd *cobra.Command, args []string) error {
	isDebugging, _ := cmd.Flags().GetBool("debug")
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	state, err := terminal.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer terminal.Restore(int(os.Stdin.Fd()), state)
	term := terminal.NewTerminal(os.Stdin, "smtclient> ")
	for {
		line, err := term.ReadLine()
		if err != nil {
			writeLineInRawMode(term, err.Error(), isDebugging)
			return nil
		}

		args := strings.Fields(line)
		if len(args) < 1 {
			writeLineInRawMode(term, `[!] Type "help" for more information.`, isDebugging)
			continue
		}
		cmd := args[0]

		switch cmd {
		case "exit", "q":
			writeLineInRawMode(term, "[+] See ya.", isDebugging)
			return nil
		case "help":
			writeLineInRawMode(term, help(), false) // turn off debugging mode for this command
		case "enable", "disable":
			if len(args) != 2 || args[1] != "timestamp" {
				writeLineInRawMode(term, "[!] Unrecognized command: "+line, isDebugging)
				continue
			}
			isDebugging = cmd == "enable"
		default:
			op := lookupOperation(cmd)
			if op == nil {
				writeLineInRawMode(term, "[!] Unrecognized command: "+cmd, isDebugging)
				continue
			}
			if n := len(args) - 1; n < op.minArgs || n > op.maxArgs {
				writeLineInRawMode(term, "[!] Incorrect number of args to "+cmd+".", isDebugging)
				continue
			}
			out, err := op.run(conf, args[1:])
			if err != nil {
				writeLineInRawMode(term, "[!] "+err.Error(), isDebugging)
				continue
			}
			writeLineInRawMode(term, "[+] "+strings.ReplaceAll(out, "\n", "\r\n"), isDebugging)
		}
	}
}
