package client

import (
	"github.com/emf99/zkSMT/application"
	"github.com/emf99/zkSMT/utils"
)

// Config contains the client's configuration needed to send a request
// to a tree server: the server's address and, for TCP addresses, how
// to authenticate the server's TLS certificate.
type Config struct {
	*application.CommonConfig `yaml:",inline"`

	Address string `toml:"address" yaml:"address"`
	// CACertPath is a PEM file with the certificate(s) the server's
	// TLS certificate must chain to. Empty uses the system roots.
	CACertPath string `toml:"ca_cert,omitempty" yaml:"ca_cert,omitempty"`
	// InsecureSkipVerify disables the verification of the server's
	// TLS certificate.
	InsecureSkipVerify bool `toml:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new client configuration at the
// given file path, with the given config encoding and server address.
func NewConfig(file, encoding, serverAddr string) *Config {
	var conf = Config{
		CommonConfig: application.NewCommonConfig(file, encoding, nil),
		Address:      serverAddr,
	}

	return &conf
}

// Load initializes a client's configuration from the given file
// using the given encoding.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	conf.CACertPath = utils.ResolvePath(conf.CACertPath, file)
	return nil
}

// Save writes a client's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the client's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}
