package server

import (
	"fmt"

	"github.com/emf99/zkSMT/application"
	"github.com/emf99/zkSMT/crypto/hasher"
	"github.com/emf99/zkSMT/crypto/hasher/smt"
	"github.com/emf99/zkSMT/merkletree"
	"github.com/emf99/zkSMT/storage/kv"
	"github.com/emf99/zkSMT/storage/kv/boltkv"
	"github.com/emf99/zkSMT/storage/kv/leveldbkv"
	"github.com/emf99/zkSMT/utils"
)

// The storage backends of the tree.
const (
	MemoryBackend  = "memory"
	LevelDBBackend = "leveldb"
	BoltBackend    = "bolt"
)

// DefaultWitnessCacheSize is the number of witnesses a server keeps
// in memory unless configured otherwise.
const DefaultWitnessCacheSize = 1024

// An Address describes a server's connection.
//
// Allowing mutations (insert, delete and the proof generators) has to
// be specified explicitly for each connection. Other types of requests
// are allowed by default, so addresses are "read-only" by default.
type Address struct {
	*application.ServerAddress `yaml:",inline"`
	AllowMutation              bool `toml:"allow_mutation,omitempty" yaml:"allow_mutation,omitempty"`
}

// TreeConfig describes the tree a server maintains: the hash
// construction, the storage backend and the witness cache.
type TreeConfig struct {
	// Hasher is the ID of a registered hasher; empty selects smt.SMTHasher.
	Hasher string `toml:"hasher,omitempty" yaml:"hasher,omitempty"`
	// Backend is one of "memory", "leveldb" or "bolt".
	Backend string `toml:"backend" yaml:"backend"`
	// Path is the database location of the durable backends.
	Path string `toml:"path,omitempty" yaml:"path,omitempty"`
	// WitnessCacheSize is the number of served witnesses kept in
	// memory. It is reloaded on SIGUSR2.
	WitnessCacheSize int `toml:"witness_cache_size" yaml:"witness_cache_size"`
}

// MetricsConfig enables the prometheus endpoint if Address is set.
type MetricsConfig struct {
	Address string `toml:"address,omitempty" yaml:"address,omitempty"`
}

// A Config contains configuration values
// which are read at initialization time from
// a TOML or YAML format configuration file.
type Config struct {
	*application.CommonConfig `yaml:",inline"`
	// Tree contains the tree's hashing and storage configuration.
	Tree *TreeConfig `toml:"tree" yaml:"tree"`
	// Metrics contains the prometheus endpoint configuration.
	Metrics *MetricsConfig `toml:"metrics,omitempty" yaml:"metrics,omitempty"`
	// Addresses contains the server's connections configuration.
	Addresses []*Address `toml:"addresses" yaml:"addresses"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new server configuration at the given file
// path with the given encoding, server addresses, logger configuration,
// tree configuration and metrics configuration.
func NewConfig(file, encoding string, addrs []*Address,
	logConfig *application.LoggerConfig, tree *TreeConfig,
	metrics *MetricsConfig) *Config {
	var conf = Config{
		CommonConfig: application.NewCommonConfig(file, encoding, logConfig),
		Tree:         tree,
		Metrics:      metrics,
		Addresses:    addrs,
	}

	return &conf
}

// Load initializes a server's configuration from the given file
// using the given encoding. It updates the paths of the TLS
// certificate files, the log file and the database to absolute
// paths relative to the config file.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	if conf.Tree == nil {
		return fmt.Errorf("Missing tree configuration")
	}
	if conf.Metrics == nil {
		conf.Metrics = new(MetricsConfig)
	}

	for _, addr := range conf.Addresses {
		if addr.ServerAddress == nil {
			return fmt.Errorf("Missing server address")
		}
		addr.TLSCertPath = utils.ResolvePath(addr.TLSCertPath, file)
		addr.TLSKeyPath = utils.ResolvePath(addr.TLSKeyPath, file)
	}
	if conf.Logger != nil {
		conf.Logger.Path = utils.ResolvePath(conf.Logger.Path, file)
	}
	conf.Tree.Path = utils.ResolvePath(conf.Tree.Path, file)

	return nil
}

// Save writes a server's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the server's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}

// OpenDB opens the storage backend described by conf.
func (conf *TreeConfig) OpenDB() (kv.DB, error) {
	switch conf.Backend {
	case MemoryBackend, "":
		return leveldbkv.OpenMem()
	case LevelDBBackend:
		if conf.Path == "" {
			return nil, fmt.Errorf("Backend %q needs a path", conf.Backend)
		}
		return leveldbkv.OpenDB(conf.Path)
	case BoltBackend:
		if conf.Path == "" {
			return nil, fmt.Errorf("Backend %q needs a path", conf.Backend)
		}
		return boltkv.OpenDB(conf.Path)
	}
	return nil, fmt.Errorf("%w: %q", kv.ErrUnknownBackend, conf.Backend)
}

// OpenTree opens the storage backend and loads the tree it holds.
// The caller owns the returned database.
func (conf *TreeConfig) OpenTree() (kv.DB, *merkletree.SparseMerkleTree, error) {
	id := conf.Hasher
	if id == "" {
		id = smt.SMTHasher
	}
	h, err := hasher.Hasher(id)
	if err != nil {
		return nil, nil, err
	}
	db, err := conf.OpenDB()
	if err != nil {
		return nil, nil, err
	}
	tree, err := merkletree.New(db, h)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, tree, nil
}
