// Package config loads the configuration knobs from a YAML file.
package config

import (
	"io"
	"os"

	"github.com/blang/semver"
	"gopkg.in/yaml.v2"
)

// Config holds the knobs described in the "Configuration knobs"
// table.
type Config struct {
	// GeneratorVersion is prepended to every cache key; changing it
	// invalidates every existing key.
	GeneratorVersion string `yaml:"generator_version"`

	// CacheRoot is the location of the local artifact cache.
	CacheRoot string `yaml:"cache_root"`

	// Compress selects whether artifact archives are gzipped.
	Compress bool `yaml:"compress"`

	// ReadOnly disables artifact cache writes.
	ReadOnly bool `yaml:"read_only"`

	// ArtifactRoot anchors extraction of cached archives.
	ArtifactRoot string `yaml:"artifact_root"`

	// InvalidatorRoot is the root the BuildInvalidator stores its
	// per-id hash files under.
	InvalidatorRoot string `yaml:"invalidator_root"`
}

// Default returns a Config with every knob set to a reasonable default
// anchored at root.
func Default(root string) Config {
	return Config{
		GeneratorVersion: "0.1.0",
		CacheRoot:        root + "/.anvil/cache",
		Compress:         true,
		ReadOnly:         false,
		ArtifactRoot:     root,
		InvalidatorRoot:  root + "/.anvil/invalidator",
	}
}

// Load reads and validates a Config from r, starting from defaultRoot's
// defaults and overriding any field the YAML document sets.
func Load(r io.Reader, defaultRoot string) (Config, error) {
	cfg := Default(defaultRoot)
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile opens path and delegates to Load.
func LoadFile(path, defaultRoot string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Load(f, defaultRoot)
}

// Validate checks that GeneratorVersion is a well-formed, tolerant semver
// string.
func (c Config) Validate() error {
	if c.GeneratorVersion == "" {
		return errEmptyGeneratorVersion
	}
	_, err := semver.ParseTolerant(c.GeneratorVersion)
	return err
}

var errEmptyGeneratorVersion = configError("generator_version must not be empty")

type configError string

func (e configError) Error() string { return "config: " + string(e) }
