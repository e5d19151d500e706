package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings. Values come from the defaults, then an
// optional YAML file, then command-line flags, each layer overriding the
// last.
type Config struct {
	// Mirror is the CPAN mirror root URL.
	Mirror string `yaml:"mirror"`
	// DataDir holds the snapshot generations and the permissions file.
	DataDir string `yaml:"data_dir"`
	// Distance is the confusability edit-distance threshold.
	Distance int `yaml:"distance"`
	// IndexPath and PermsPath override the resource paths under the
	// mirror root, e.g. to fetch uncompressed ".txt" files. Empty means
	// the standard compressed paths.
	IndexPath string `yaml:"index_path"`
	PermsPath string `yaml:"perms_path"`
}

const (
	defaultMirror   = "https://cpan.metacpan.org"
	defaultDistance = 1
)

// Default returns the built-in configuration. The data directory lives
// under the user's home; when the home directory cannot be determined the
// current directory is used.
func Default() Config {
	dataDir := ".cpansentry"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".cpansentry")
	}
	return Config{
		Mirror:   defaultMirror,
		DataDir:  dataDir,
		Distance: defaultDistance,
	}
}

// LoadDir reads config.yaml under dir over the defaults. Unlike an
// explicitly named config file, a missing file here just means defaults.
func LoadDir(dir string) (Config, error) {
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Load reads a YAML config file over the defaults. An empty path means
// defaults only. A missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Distance < 1 {
		return Config{}, fmt.Errorf("parsing config %s: distance must be at least 1", path)
	}
	return cfg, nil
}
