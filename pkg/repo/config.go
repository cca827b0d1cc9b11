package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ObjectStoreFile = "file"
	ObjectStoreBolt = "bolt"
)

// Config stores repository-local settings, persisted as TOML in
// .simplegit/config.
type Config struct {
	User    UserConfig    `toml:"user"`
	Core    CoreConfig    `toml:"core"`
	Signing SigningConfig `toml:"signing"`
}

// UserConfig holds the repository identity recorded on commits.
type UserConfig struct {
	Author string `toml:"author,omitempty"`
}

// CoreConfig selects storage behavior.
type CoreConfig struct {
	ObjectStore string `toml:"object_store,omitempty"`
}

// SigningConfig names the SSH private key used by `commit --sign`.
type SigningConfig struct {
	Key string `toml:"key,omitempty"`
}

// DefaultConfig returns the settings a fresh repository starts with.
func DefaultConfig() *Config {
	return &Config{Core: CoreConfig{ObjectStore: ObjectStoreFile}}
}

func (c *Config) normalize() error {
	c.User.Author = strings.TrimSpace(c.User.Author)
	c.Signing.Key = strings.TrimSpace(c.Signing.Key)
	switch strings.TrimSpace(c.Core.ObjectStore) {
	case "", ObjectStoreFile:
		c.Core.ObjectStore = ObjectStoreFile
	case ObjectStoreBolt:
		c.Core.ObjectStore = ObjectStoreBolt
	default:
		return fmt.Errorf("unsupported object_store %q (want %q or %q)", c.Core.ObjectStore, ObjectStoreFile, ObjectStoreBolt)
	}
	return nil
}

func configPath(metaDir string) string {
	return filepath.Join(metaDir, "config")
}

func readConfigFile(metaDir string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(configPath(metaDir), cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

func writeConfigFile(metaDir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.normalize(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := writeFileAtomic(configPath(metaDir), buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ReadConfig reads .simplegit/config. Missing config returns defaults.
func (r *Repo) ReadConfig() (*Config, error) {
	return readConfigFile(r.MetaDir)
}

// WriteConfig atomically writes .simplegit/config. The object store of an
// existing repository cannot be switched this way; objects would be stranded
// in the old backend.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	current, err := r.ReadConfig()
	if err != nil {
		return err
	}
	if err := cfg.normalize(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if cfg.Core.ObjectStore != current.Core.ObjectStore {
		return fmt.Errorf("write config: object_store is fixed at init (%q)", current.Core.ObjectStore)
	}
	return writeConfigFile(r.MetaDir, cfg)
}

// SetAuthor stores the repository identity used for new commits.
func (r *Repo) SetAuthor(author string) error {
	author = strings.TrimSpace(author)
	if author == "" {
		return fmt.Errorf("set author: author is required")
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.User.Author = author
	return r.WriteConfig(cfg)
}

// Author returns the configured identity, or "" when none is set.
func (r *Repo) Author() (string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}
	return cfg.User.Author, nil
}

// SetSigningKey records the default SSH key path for signed commits.
func (r *Repo) SetSigningKey(path string) error {
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.Signing.Key = strings.TrimSpace(path)
	return r.WriteConfig(cfg)
}
