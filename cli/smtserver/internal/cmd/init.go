package cmd

import (
	"path"

	"github.com/emf99/zkSMT/application"
	"github.com/emf99/zkSMT/application/server"
	"github.com/emf99/zkSMT/application/testutil"
	"github.com/emf99/zkSMT/cli"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("the tree server", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("cert", "t", false, "Generate self-signed ssl keys/cert with sane defaults")
	initCmd.Flags().StringP("backend", "b", server.LevelDBBackend, "Storage backend of the tree (memory, leveldb or bolt)")
}

func initRunFunc(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	encoding, _ := cmd.Flags().GetString("encoding")
	backend, _ := cmd.Flags().GetString("backend")
	if err := mkConfig(dir, encoding, backend); err != nil {
		return err
	}

	if cert, _ := cmd.Flags().GetBool("cert"); cert {
		return testutil.CreateTLSCert(dir)
	}
	return nil
}

func mkConfig(dir, encoding, backend string) error {
	file := path.Join(dir, "config."+encoding)
	addrs := []*server.Address{
		{
			ServerAddress: &application.ServerAddress{
				Address: "unix:///tmp/zksmt.sock",
			},
			AllowMutation: true,
		},
		{
			ServerAddress: &application.ServerAddress{
				Address:     "tcp://0.0.0.0:3000",
				TLSCertPath: "server.pem",
				TLSKeyPath:  "server.key",
			},
		},
	}
	logger := &application.LoggerConfig{
		EnableStacktrace: true,
		Environment:      "development",
		Path:             "smtserver.log",
	}
	tree := &server.TreeConfig{
		Backend:          backend,
		WitnessCacheSize: server.DefaultWitnessCacheSize,
	}
	if backend != server.MemoryBackend {
		tree.Path = "tree.db"
	}
	metrics := &server.MetricsConfig{Address: "127.0.0.1:2112"}

	conf := server.NewConfig(file, encoding, addrs, logger, tree, metrics)
	return conf.Save()
}
