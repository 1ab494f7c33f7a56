package application

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	*CommonConfig `yaml:",inline"`
	Address       string `toml:"address" yaml:"address"`
}

func (conf *testConfig) Load(file, encoding string) error {
	conf.CommonConfig = NewCommonConfig(file, encoding, nil)
	return conf.GetLoader().Decode(conf)
}

func (conf *testConfig) Save() error {
	return conf.GetLoader().Encode(conf)
}

func (conf *testConfig) GetPath() string {
	return conf.Path
}

func TestConfigRoundTrip(t *testing.T) {
	for _, encoding := range []string{"toml", "yaml"} {
		t.Run(encoding, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "config."+encoding)
			conf := &testConfig{
				CommonConfig: NewCommonConfig(file, encoding, &LoggerConfig{
					Environment: "production",
					Path:        "zksmt.log",
				}),
				Address: "unix:///tmp/zksmt.sock",
			}
			require.NoError(t, conf.Save())
			// existing files are never overwritten
			assert.Error(t, conf.Save())

			loaded := new(testConfig)
			require.NoError(t, loaded.Load(file, encoding))
			assert.Equal(t, conf.Address, loaded.Address)
			assert.Equal(t, conf.Logger, loaded.Logger)
			assert.Equal(t, file, loaded.GetPath())
		})
	}
}

func TestUnknownEncodingFallsBackToToml(t *testing.T) {
	assert.IsType(t, new(TomlLoader), newConfigLoader("json"))
	assert.IsType(t, new(YamlLoader), newConfigLoader("yaml"))
}

func TestEncodingFor(t *testing.T) {
	assert.Equal(t, "yaml", EncodingFor("config.yaml"))
	assert.Equal(t, "yaml", EncodingFor("/etc/zksmt/config.yml"))
	assert.Equal(t, "toml", EncodingFor("config.toml"))
	assert.Equal(t, "toml", EncodingFor(".yml"))
}

func TestLoadMissingConfig(t *testing.T) {
	conf := new(testConfig)
	assert.Error(t, conf.Load(filepath.Join(t.TempDir(), "absent.toml"), "toml"))
	assert.Error(t, conf.Load(filepath.Join(t.TempDir(), "absent.yaml"), "yaml"))
}

func TestNewLogger(t *testing.T) {
	l := NewLogger(&LoggerConfig{Environment: "Production"})
	l.Info("hello", "key", "value")
	assert.Panics(t, func() { NewLogger(&LoggerConfig{Environment: "staging"}) })
	// a nil config discards everything
	NewLogger(nil).Error("dropped")
}
