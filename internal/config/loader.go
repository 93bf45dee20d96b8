package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dotfile location under the user's home directory.
const (
	ConfigDir  = "turnkit"
	ConfigFile = "config.json"
)

// EnvConfigPath points the loader at a config file other than the dotfile.
const EnvConfigPath = "TURNKIT_CONFIG"

// FileSystem is what the loader needs from the OS.
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) UserHomeDir() (string, error)         { return os.UserHomeDir() }
func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Loader builds a Config from defaults, the dotfile and the environment,
// in that order of increasing precedence.
type Loader struct {
	fs     FileSystem
	lookup func(string) (string, bool)
}

// NewLoader reads the real file system and process environment.
func NewLoader() *Loader {
	return NewLoaderWithFS(osFS{}, os.LookupEnv)
}

// NewLoaderWithFS injects the file system and environment. A nil lookup
// skips the environment entirely.
func NewLoaderWithFS(fs FileSystem, lookup func(string) (string, bool)) *Loader {
	return &Loader{fs: fs, lookup: lookup}
}

// Load returns the validated configuration. Keys present in the file replace
// defaults, explicit zero values included. A missing file or an unknown home
// directory leaves the defaults in place; anything else that stops the file
// from being read or parsed is an error.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	path, ok := l.path()
	if ok {
		if err := mergeFile(l.fs, path, cfg); err != nil {
			return nil, err
		}
	}
	if l.lookup != nil {
		cfg.ApplyEnv(l.lookup)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) path() (string, bool) {
	if l.lookup != nil {
		if p, ok := l.lookup(EnvConfigPath); ok && p != "" {
			return p, true
		}
	}
	home, err := l.fs.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".config", ConfigDir, ConfigFile), true
}

func mergeFile(fsys FileSystem, path string, cfg *Config) error {
	data, err := fsys.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Load uses the default loader.
func Load() (*Config, error) {
	return NewLoader().Load()
}
