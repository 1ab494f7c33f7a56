package application

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/emf99/zkSMT/utils"
	"gopkg.in/yaml.v3"
)

// ConfigLoader provides an interface for implementing
// different application configuration encodings.
type ConfigLoader interface {
	Encode(conf AppConfig) error
	Decode(conf AppConfig) error
}

// newConfigLoader constructs a new ConfigLoader for the given encoding.
// If the encoding is unsupported, newConfigLoader() returns a loader
// for the default encoding (TOML).
func newConfigLoader(encoding string) ConfigLoader {
	loader := configEncodings[encoding]
	if loader == nil {
		loader = new(TomlLoader)
	}
	return loader
}

// EncodingFor guesses the config encoding from a file extension.
func EncodingFor(file string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		if len(file) > len(ext) && file[len(file)-len(ext):] == ext {
			return "yaml"
		}
	}
	return "toml"
}

// TomlLoader implements a ConfigLoader for toml-encoded
// configurations.
type TomlLoader struct{}

var _ ConfigLoader = (*TomlLoader)(nil)

// Encode saves the given configuration conf in toml encoding.
// If there is any encoding or IO error, Encode() returns an error.
func (ld *TomlLoader) Encode(conf AppConfig) error {
	var confBuf bytes.Buffer

	e := toml.NewEncoder(&confBuf)
	if err := e.Encode(conf); err != nil {
		return err
	}
	return utils.WriteFile(conf.GetPath(), confBuf.Bytes(), 0644)
}

// Decode reads an application configuration from the given toml-encoded
// file. If there is any decoding error, Decode() returns an error.
func (ld *TomlLoader) Decode(conf AppConfig) error {
	if _, err := toml.DecodeFile(conf.GetPath(), conf); err != nil {
		return fmt.Errorf("Failed to load config: %v", err)
	}
	return nil
}

// YamlLoader implements a ConfigLoader for yaml-encoded
// configurations.
type YamlLoader struct{}

var _ ConfigLoader = (*YamlLoader)(nil)

// Encode saves the given configuration conf in yaml encoding.
func (ld *YamlLoader) Encode(conf AppConfig) error {
	var confBuf bytes.Buffer

	e := yaml.NewEncoder(&confBuf)
	e.SetIndent(2)
	if err := e.Encode(conf); err != nil {
		return err
	}
	if err := e.Close(); err != nil {
		return err
	}
	return utils.WriteFile(conf.GetPath(), confBuf.Bytes(), 0644)
}

// Decode reads an application configuration from the given yaml-encoded
// file. Unknown fields are rejected.
func (ld *YamlLoader) Decode(conf AppConfig) error {
	f, err := os.Open(conf.GetPath())
	if err != nil {
		return fmt.Errorf("Failed to load config: %v", err)
	}
	defer f.Close()
	d := yaml.NewDecoder(f)
	d.KnownFields(true)
	if err := d.Decode(conf); err != nil {
		return fmt.Errorf("Failed to load config: %v", err)
	}
	return nil
}

var configEncodings = map[string]ConfigLoader{
	"toml": new(TomlLoader),
	"yaml": new(YamlLoader),
}
